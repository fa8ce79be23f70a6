package extract

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gocite/internal/citation"
)

// redirectorHosts are search-provider proxy hosts whose links hide the
// real destination behind an HTTP redirect. Matching is
// subdomain-inclusive.
var redirectorHosts = []string{
	"vertexaisearch.cloud.google.com",
	"googleusercontent.com",
	"search.app",
	"g.co",
	"goo.gl",
}

// RedirectResolver replaces known search-redirector URLs with their real
// destination by following a single HTTP redirect. Resolution is
// best-effort: on any failure the original URL is kept and left for the
// domain filter to reject later.
type RedirectResolver struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each resolution request. Zero means default (5s).
	Timeout time.Duration
}

const defaultResolveTimeout = 5 * time.Second

// ResolveAll resolves redirector URLs across a list in place-order,
// returning a new list. Citation count never changes.
func (r *RedirectResolver) ResolveAll(ctx context.Context, list citation.List) citation.List {
	out := make(citation.List, len(list))
	copy(out, list)
	for i, c := range out {
		if !IsRedirectorURL(c.URL) {
			continue
		}
		if resolved, ok := r.resolve(ctx, c.URL); ok {
			log.Debug().Int("number", c.Number).Str("from", c.URL).Str("to", resolved).Msg("redirector resolved")
			out[i].URL = citation.NormalizeURL(resolved)
		}
	}
	return out
}

// IsRedirectorURL reports whether a URL points at a known search-provider
// redirector host.
func IsRedirectorURL(rawURL string) bool {
	host := citation.Hostname(rawURL)
	if host == "" {
		return false
	}
	for _, h := range redirectorHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// resolve follows exactly one redirect hop and returns the Location
// target when the redirector answered with a 3xx.
func (r *RedirectResolver) resolve(ctx context.Context, rawURL string) (string, bool) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	hc := r.httpClient()
	resp, err := hc.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("redirector resolution failed")
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		return "", false
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", false
	}
	target, err := resp.Request.URL.Parse(loc)
	if err != nil || target.Host == "" {
		return "", false
	}
	if IsRedirectorURL(target.String()) {
		// Redirector pointing at another redirector: give up, the domain
		// filter handles it.
		return "", false
	}
	return target.String(), true
}

func (r *RedirectResolver) httpClient() *http.Client {
	base := &http.Client{}
	if r.HTTPClient != nil {
		clone := *r.HTTPClient
		base = &clone
	}
	// Stop at the first hop so the Location header stays observable.
	base.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return base
}
