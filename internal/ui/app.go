package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/worthit/internal/brain"
	"github.com/abelbrown/worthit/internal/coord"
	"github.com/abelbrown/worthit/internal/feeds"
	"github.com/abelbrown/worthit/internal/otel"
)

// Service runs scans and fusion queries. *coord.Coordinator implements it.
type Service interface {
	Scan(ctx context.Context, topic feeds.Topic, engine brain.EngineName, progress coord.Progress) (coord.ScanResult, error)
	Ask(ctx context.Context, query string) coord.AskResult
	Ready() []brain.EngineName
	Primary() brain.EngineName
}

// Tab indexes the dashboard tabs.
type Tab int

const (
	TabNews Tab = iota
	TabFilm
	TabGear
	TabFusion
	tabCount
)

// Topic returns the feed topic shown on t. The fusion tab has none.
func (t Tab) Topic() (feeds.Topic, bool) {
	if t < TabFusion {
		return feeds.Topics[t], true
	}
	return "", false
}

// Label is the tab caption.
func (t Tab) Label() string {
	if topic, ok := t.Topic(); ok {
		return topic.Label()
	}
	return "Fusion"
}

const eventRefresh = time.Second

// AppConfig holds the dashboard's collaborators.
type AppConfig struct {
	Service Service
	Ring    *otel.RingBuffer // optional; feeds the status bar and event overlay
	Ctx     context.Context  // cancels in-flight work on quit
}

// App is the root Bubble Tea model.
// App does not hold the coordinator's collaborators. It reaches them through
// Service and receives results as messages.
type App struct {
	ctx  context.Context
	svc  Service
	ring *otel.RingBuffer

	tab     Tab
	engine  brain.EngineName
	engines []brain.EngineName

	scans   map[feeds.Topic]coord.ScanResult
	answer  *coord.AskResult
	showRaw bool

	busy       bool
	busyTab    Tab
	progressCh chan ScanProgress
	done       int
	total      int
	current    string

	spinner  spinner.Model
	progress progress.Model
	input    textinput.Model
	viewport viewport.Model

	lastEvent    string
	notice       string
	err          error
	width        int
	height       int
	ready        bool
	dirty        bool
	debugVisible bool
}

// NewApp creates the dashboard.
func NewApp(cfg AppConfig) App {
	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask anything: is the new handheld worth it?"
	ti.CharLimit = 500
	ti.Prompt = "? "

	a := App{
		ctx:      ctx,
		svc:      cfg.Service,
		ring:     cfg.Ring,
		scans:    make(map[feeds.Topic]coord.ScanResult),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithGradient(string(colorPrimary), string(colorHighlight)), progress.WithoutPercentage()),
		input:    ti,
		viewport: viewport.New(80, 20),
		engine:   brain.Gemini,
	}
	if a.svc != nil {
		a.engines = a.svc.Ready()
		a.engine = a.svc.Primary()
	}
	return a
}

// Init starts the status bar refresh.
func (a App) Init() tea.Cmd {
	if a.ring == nil {
		return nil
	}
	return tickEvents()
}

func tickEvents() tea.Cmd {
	return tea.Tick(eventRefresh, func(time.Time) tea.Msg { return EventTick{} })
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	next.layout()
	return next, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.dirty = true
		return a, nil

	case ScanProgress:
		if !a.busy || a.progressCh == nil {
			return a, nil
		}
		a.done, a.total, a.current = msg.Done, msg.Total, msg.Current
		return a, waitProgress(a.progressCh)

	case ScanDone:
		a.busy = false
		a.progressCh = nil
		a.err = nil
		if msg.Err != nil {
			if !errors.Is(msg.Err, context.Canceled) {
				a.err = msg.Err
			}
			return a, nil
		}
		a.scans[msg.Topic] = msg.Result
		a.dirty = true
		a.viewport.GotoTop()
		return a, nil

	case AskDone:
		a.busy = false
		res := msg.Result
		a.answer = &res
		a.dirty = true
		a.viewport.GotoTop()
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case EventTick:
		if a.ring != nil {
			if e, ok := a.ring.Latest(); ok {
				a.lastEvent = e.Summary()
			}
		}
		return a, tickEvents()
	}

	if a.tab == TabFusion && a.input.Focused() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (App, tea.Cmd) {
	// Clear any existing error on key press
	a.err = nil
	a.notice = ""

	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.tab == TabFusion && a.input.Focused() {
		switch key {
		case "enter":
			return a.submitQuery()
		case "esc":
			a.input.Blur()
			return a, nil
		case "tab", "shift+tab":
			return a.switchTab(a.cycleTab(key == "tab"))
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit

	case "1", "2", "3", "4":
		return a.switchTab(Tab(key[0] - '1'))

	case "tab", "shift+tab":
		return a.switchTab(a.cycleTab(key == "tab"))

	case "enter":
		if a.tab == TabFusion {
			return a, a.input.Focus()
		}
		return a.startScan()

	case "i", "/":
		if a.tab == TabFusion {
			return a, a.input.Focus()
		}
		return a, nil

	case "e":
		a.toggleEngine()
		return a, nil

	case "r":
		if a.tab == TabFusion && a.answer != nil {
			a.showRaw = !a.showRaw
			a.dirty = true
		}
		return a, nil

	case "?":
		a.debugVisible = !a.debugVisible
		return a, nil

	case "g", "home":
		a.viewport.GotoTop()
		return a, nil

	case "G", "end":
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) cycleTab(forward bool) Tab {
	if forward {
		return (a.tab + 1) % tabCount
	}
	return (a.tab + tabCount - 1) % tabCount
}

func (a App) switchTab(t Tab) (App, tea.Cmd) {
	if t < 0 || t >= tabCount || t == a.tab {
		return a, nil
	}
	a.tab = t
	a.dirty = true
	a.viewport.GotoTop()
	if t == TabFusion && a.answer == nil && !a.busy {
		return a, a.input.Focus()
	}
	a.input.Blur()
	return a, nil
}

// toggleEngine cycles through the engines that have credentials.
func (a *App) toggleEngine() {
	switch len(a.engines) {
	case 0:
		a.notice = "no engine configured"
		return
	case 1:
		a.engine = a.engines[0]
		a.notice = fmt.Sprintf("only %s is configured", a.engine)
		return
	}
	next := 0
	for i, e := range a.engines {
		if e == a.engine {
			next = (i + 1) % len(a.engines)
			break
		}
	}
	a.engine = a.engines[next]
	a.notice = fmt.Sprintf("engine: %s", a.engine)
}

func (a App) startScan() (App, tea.Cmd) {
	topic, ok := a.tab.Topic()
	if !ok || a.busy || a.svc == nil {
		return a, nil
	}

	ch := make(chan ScanProgress, 16)
	a.busy = true
	a.busyTab = a.tab
	a.progressCh = ch
	a.done, a.total, a.current = 0, 0, ""

	svc, ctx, engine := a.svc, a.ctx, a.engine
	scan := func() tea.Msg {
		defer close(ch)
		res, err := svc.Scan(ctx, topic, engine, func(done, total int, current string) {
			select {
			case ch <- ScanProgress{Topic: topic, Done: done, Total: total, Current: current}:
			default:
			}
		})
		return ScanDone{Topic: topic, Result: res, Err: err}
	}
	return a, tea.Batch(scan, waitProgress(ch), a.spinner.Tick)
}

func waitProgress(ch <-chan ScanProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return p
	}
}

func (a App) submitQuery() (App, tea.Cmd) {
	query := strings.TrimSpace(a.input.Value())
	if query == "" || a.busy || a.svc == nil {
		return a, nil
	}
	a.busy = true
	a.busyTab = TabFusion
	a.input.Blur()

	svc, ctx := a.svc, a.ctx
	ask := func() tea.Msg {
		return AskDone{Result: svc.Ask(ctx, query)}
	}
	return a, tea.Batch(ask, a.spinner.Tick)
}

// layout sizes the viewport to the space left by the chrome and refreshes
// its content when the shown data changed.
func (a *App) layout() {
	if !a.ready {
		return
	}
	chrome := 2 // tabs + status bar
	if a.tab == TabFusion {
		chrome += 2
	}
	if a.busy {
		chrome++
	}
	if a.err != nil {
		chrome++
	}
	h := a.height - chrome
	if h < 1 {
		h = 1
	}
	if a.viewport.Width != a.width {
		a.dirty = true
	}
	a.viewport.Width = a.width
	a.viewport.Height = h
	a.progress.Width = a.width / 3
	a.input.Width = a.width - 6

	if a.dirty {
		a.viewport.SetContent(a.content())
		a.dirty = false
	}
}

func (a App) content() string {
	if topic, ok := a.tab.Topic(); ok {
		res, scanned := a.scans[topic]
		if !scanned {
			return HelpStyle.Render(fmt.Sprintf("Press enter to scan %s with %s.", topic.Label(), a.engine))
		}
		return RenderCards(res, a.width)
	}
	if a.answer == nil {
		return HelpStyle.Render("Type a question and press enter. Both engines answer, DeepSeek edits the merge.")
	}
	return RenderFusion(*a.answer, a.width, a.showRaw)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.debugVisible {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.ring, a.width, a.height-1),
			debugStatusBar(a.width),
		)
	}

	parts := []string{a.tabBar()}
	if a.tab == TabFusion {
		parts = append(parts, QueryBar.Width(a.width).Render(a.input.View()))
	}
	if a.busy {
		parts = append(parts, a.busyLine())
	}
	parts = append(parts, a.viewport.View())
	if a.err != nil {
		parts = append(parts, ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()))
	}
	parts = append(parts, a.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) tabBar() string {
	var tabs []string
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t.Label())
		if t == a.tab {
			tabs = append(tabs, TabActive.Render(label))
		} else {
			tabs = append(tabs, TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a App) busyLine() string {
	if a.busyTab == TabFusion {
		return fmt.Sprintf(" %s %s", a.spinner.View(), ProgressTitle.Render("Both engines are working..."))
	}
	percent := 0.0
	if a.total > 0 {
		percent = float64(a.done) / float64(a.total)
	}
	count := ProgressCount.Render(fmt.Sprintf("%d/%d", a.done, a.total))
	if a.total == 0 {
		count = ProgressCount.Render("fetching feeds")
	}
	line := fmt.Sprintf(" %s %s %s %s", a.spinner.View(), a.progress.ViewAs(percent), count, ProgressTitle.Render(a.current))
	return lipgloss.NewStyle().MaxWidth(a.width).Render(line)
}

func (a App) statusBar() string {
	var engines []string
	for _, name := range []brain.EngineName{brain.DeepSeek, brain.Gemini} {
		label := string(name)
		if name == a.engine {
			label = "›" + label
		}
		if a.isReady(name) {
			engines = append(engines, EngineReady.Render(label))
		} else {
			engines = append(engines, EngineOffline.Render(label))
		}
	}

	info := a.lastEvent
	if a.notice != "" {
		info = a.notice
	}

	keys := StatusBarKey.Render("enter") + StatusBarText.Render(":run ") +
		StatusBarKey.Render("e") + StatusBarText.Render(":engine ") +
		StatusBarKey.Render("?") + StatusBarText.Render(":events ") +
		StatusBarKey.Render("q") + StatusBarText.Render(":quit")

	line := strings.Join(engines, " ") + "  " + StatusBarText.Render(info) + "  " + keys
	return StatusBar.Width(a.width).MaxWidth(a.width).Render(line)
}

func (a App) isReady(name brain.EngineName) bool {
	for _, e := range a.engines {
		if e == name {
			return true
		}
	}
	return false
}

// CurrentTab returns the selected tab (for testing).
func (a App) CurrentTab() Tab {
	return a.tab
}

// Engine returns the engine new scans use (for testing).
func (a App) Engine() brain.EngineName {
	return a.engine
}

// Busy reports whether a scan or query is running (for testing).
func (a App) Busy() bool {
	return a.busy
}
