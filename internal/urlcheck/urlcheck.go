package urlcheck

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Status is the outcome of a reachability check. FinalURL is the URL after
// redirects when the check succeeded, or the original URL unchanged when it
// did not. PageTitle is best-effort and only populated when the check had
// to fetch an HTML body.
type Status struct {
	Reachable bool
	FinalURL  string
	PageTitle string
}

// Checker performs bounded HTTP reachability checks. HEAD is tried first;
// servers that reject HEAD get a GET fallback with redirects followed.
// There is no retry at this layer: a timed-out URL is simply unreachable,
// and any retrying happens at the alternative-search level above.
type Checker struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero means the 8s default.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight checks per checker instance.
	// Zero means unlimited.
	MaxConcurrent int

	// internal limiter initialized on first use when MaxConcurrent > 0
	limiter     chan struct{}
	limiterOnce sync.Once
}

const (
	defaultTimeout = 8 * time.Second
	// maxTitleBody caps how much of a GET body is read for title extraction.
	maxTitleBody = 256 * 1024
)

// Check classifies a URL as reachable or not. It never returns an error:
// every network failure mode collapses into Reachable=false with the
// original URL preserved.
func (c *Checker) Check(ctx context.Context, rawURL string) Status {
	unreachable := Status{Reachable: false, FinalURL: rawURL}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !isHTTPScheme(u) {
		return unreachable
	}
	if IsErrorPagePath(u.Path) {
		return unreachable
	}

	c.acquire()
	defer c.release()

	status, finalURL, err := c.head(ctx, rawURL)
	if err == nil {
		switch {
		case status >= 200 && status <= 299:
			if fu, _ := url.Parse(finalURL); fu != nil && IsErrorPagePath(fu.Path) {
				return unreachable
			}
			return Status{Reachable: true, FinalURL: finalURL}
		case headUnreliable(status):
			// fall through to GET
		default:
			return unreachable
		}
	}

	st, ok := c.getFallback(ctx, rawURL)
	if !ok {
		return unreachable
	}
	return st
}

// head issues a single HEAD request with redirects followed and returns the
// final status and resolved URL.
func (c *Checker) head(ctx context.Context, rawURL string) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	req, err := c.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, "", err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, resp.Request.URL.String(), nil
}

// getFallback issues a GET for servers whose HEAD handling is unreliable.
// When the response is HTML it also extracts the page title.
func (c *Checker) getFallback(ctx context.Context, rawURL string) (Status, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return Status{}, false
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("GET fallback failed")
		return Status{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Status{}, false
	}
	finalURL := resp.Request.URL.String()
	if IsErrorPagePath(resp.Request.URL.Path) {
		return Status{}, false
	}
	st := Status{Reachable: true, FinalURL: finalURL}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml") {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxTitleBody))
		if err == nil {
			st.PageTitle = extractTitle(body)
		}
	}
	return st, true
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c *Checker) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

func (c *Checker) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Checker) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

// headUnreliable reports whether a HEAD status should trigger the GET
// fallback instead of a verdict: method rejections and the odd server
// that answers HEAD with a 3xx the client could not settle.
func headUnreliable(status int) bool {
	switch status {
	case http.StatusMethodNotAllowed, http.StatusNotImplemented, http.StatusForbidden:
		return true
	}
	return status >= 300 && status <= 399
}

// errorPageSegments are path segments that mark soft-404 pages: many sites
// serve these with HTTP 200.
var errorPageSegments = map[string]bool{
	"404":            true,
	"not-found":      true,
	"notfound":       true,
	"page-not-found": true,
	"error":          true,
	"errors":         true,
}

// IsErrorPagePath reports whether a URL path looks like an error page.
// Matching is per-segment so locale-prefixed paths like /en/404 are caught.
func IsErrorPagePath(path string) bool {
	for _, seg := range strings.Split(strings.ToLower(path), "/") {
		seg = strings.TrimSuffix(seg, ".html")
		seg = strings.TrimSuffix(seg, ".htm")
		if errorPageSegments[seg] {
			return true
		}
	}
	return false
}

// extractTitle pulls the <title> text out of an HTML document, or "" when
// the document has none.
func extractTitle(body []byte) string {
	node, err := html.Parse(strings.NewReader(string(body)))
	if err != nil || node == nil {
		return ""
	}
	var title string
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "title") && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(node)
	return strings.Join(strings.Fields(title), " ")
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (c *Checker) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Checker) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
		// should not happen, but avoid blocking
	}
}
