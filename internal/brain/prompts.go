package brain

import (
	"fmt"

	"github.com/abelbrown/worthit/internal/feeds"
)

// Prompt budgets, in characters.
const (
	ItemBudget    = 3000
	ContextBudget = 5000
	ReportBudget  = 4000
)

// Persona returns the role the analysis prompt speaks as.
func Persona(mode feeds.Mode) string {
	if mode == feeds.ModeFilm {
		return "Film Critic"
	}
	return "Senior Tech Editor"
}

// DefaultTag is used when a model returns no tags.
func DefaultTag(mode feeds.Mode) string {
	switch mode {
	case feeds.ModeFilm:
		return "Film"
	case feeds.ModeHardware:
		return "Gear"
	default:
		return "News"
	}
}

func analysisPrompt(mode feeds.Mode, locale, title, content string) string {
	return fmt.Sprintf(`Role: %s
Task: Translate & Summarize into %s.

Source Title: %s
Source Content: %s

OUTPUT FORMAT REQUIREMENTS (CRITICAL):
1. **Title**: Catchy %s title.
2. **Summary**:
   - MUST be structured with clear paragraphs.
   - Use `+"`**`"+` to bold key entities (People, Companies, Products).
   - If there are multiple points, use a list format:
     * Point 1
     * Point 2
3. **Tags**: 3-5 keywords.

Output JSON ONLY: { "score": 85, "title_cn": "...", "summary": "Markdown content...", "tags": ["..."] }
`, Persona(mode), locale, title, content, locale)
}

func fusionTaskPrompt(query, material string) string {
	return fmt.Sprintf(`Reference material:
%s

User question: %s
Requirements: deep analysis, clear logic.
`, material, query)
}

func mergePrompt(locale string, a, b EngineName, rawA, rawB string) string {
	return fmt.Sprintf(`Role: Senior Editor.
Task: Merge two reports into one PERFECTLY FORMATTED report.

Report A (%s): %s
Report B (%s): %s

FORMATTING RULES (STRICT):
1. Use `+"`##`"+` for main sections.
2. Use `+"`###`"+` for subsections.
3. Use `+"`- `"+` (bullet points) for lists.
4. Use `+"`**Bold**`"+` for key terms.
5. Insert blank lines between paragraphs.

Output: %s Markdown.
`, a, rawA, b, rawB, locale)
}
