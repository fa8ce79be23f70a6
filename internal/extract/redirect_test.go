package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperifyio/gocite/internal/citation"
)

// withTestRedirector registers the local test host as a redirector for the
// duration of a test.
func withTestRedirector(t *testing.T, srv *httptest.Server) {
	t.Helper()
	host := citation.Hostname(srv.URL)
	saved := redirectorHosts
	redirectorHosts = append([]string{host}, redirectorHosts...)
	t.Cleanup(func() { redirectorHosts = saved })
}

func TestResolveAll_FollowsOneRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://real-destination.example/article", http.StatusFound)
	}))
	defer srv.Close()
	withTestRedirector(t, srv)

	list := citation.List{{Number: 1, URL: srv.URL + "/redirect/abc", Title: "Proxied source link here"}}
	r := &RedirectResolver{HTTPClient: srv.Client()}
	out := r.ResolveAll(context.Background(), list)

	if len(out) != 1 {
		t.Fatalf("count changed: %d", len(out))
	}
	if out[0].URL != "https://real-destination.example/article" {
		t.Fatalf("redirector not resolved, got %q", out[0].URL)
	}
}

func TestResolveAll_KeepsOriginalOnNonRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	withTestRedirector(t, srv)

	orig := srv.URL + "/redirect/abc"
	list := citation.List{{Number: 1, URL: orig, Title: "Proxied source link here"}}
	out := (&RedirectResolver{HTTPClient: srv.Client()}).ResolveAll(context.Background(), list)

	if out[0].URL != orig {
		t.Fatalf("original URL must be kept on failed resolution, got %q", out[0].URL)
	}
}

func TestResolveAll_IgnoresNonRedirectorURLs(t *testing.T) {
	list := citation.List{{Number: 1, URL: "https://example.com/a", Title: "Plain source link here"}}
	out := (&RedirectResolver{}).ResolveAll(context.Background(), list)
	if out[0].URL != "https://example.com/a" {
		t.Fatalf("non-redirector URL must be untouched, got %q", out[0].URL)
	}
}

func TestResolveAll_RelativeLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect/abc" {
			w.Header().Set("Location", "/landed")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	withTestRedirector(t, srv)

	list := citation.List{{Number: 1, URL: srv.URL + "/redirect/abc", Title: "Proxied source link here"}}
	out := (&RedirectResolver{HTTPClient: srv.Client()}).ResolveAll(context.Background(), list)

	// A relative Location resolves against the redirector itself, which is
	// still a redirector host, so the original URL is kept for filtering.
	if out[0].URL != srv.URL+"/redirect/abc" {
		t.Fatalf("expected original kept, got %q", out[0].URL)
	}
}
