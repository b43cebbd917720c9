// Package httpclient builds the HTTP clients shared by feeds, search and the
// model backends. Every client dials through the configured outbound proxy.
//
// Callers MUST close response bodies, even on non-2xx status:
//
//	resp, err := c.Do(req)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Timeouts used by the application's clients.
const (
	FeedTimeout  = 10 * time.Second
	ModelTimeout = 120 * time.Second
)

// ChromeUA is sent by the feed fetcher and the search scraper. Several
// publishers reject the Go default user agent.
const ChromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Transport returns a pooled transport that routes through proxy.
// An empty proxy dials directly.
func Transport(proxy string) (*http.Transport, error) {
	t := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", proxy)
		}
		t.Proxy = http.ProxyURL(u)
	}
	return t, nil
}

// New returns a client with the given timeout that routes through proxy.
func New(proxy string, timeout time.Duration) (*http.Client, error) {
	t, err := Transport(proxy)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: t, Timeout: timeout}, nil
}

// Clients is the pair of clients the application needs: a short one for
// feeds and search, and a long one for model calls. Both share a transport.
type Clients struct {
	Feed  *http.Client
	Model *http.Client
}

// NewClients builds both clients over one pooled transport.
func NewClients(proxy string, feedTimeout time.Duration) (*Clients, error) {
	t, err := Transport(proxy)
	if err != nil {
		return nil, err
	}
	if feedTimeout <= 0 {
		feedTimeout = FeedTimeout
	}
	return &Clients{
		Feed:  &http.Client{Transport: t, Timeout: feedTimeout},
		Model: &http.Client{Transport: t, Timeout: ModelTimeout},
	}, nil
}
