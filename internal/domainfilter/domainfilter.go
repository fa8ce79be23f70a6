package domainfilter

import (
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/hyperifyio/gocite/internal/citation"
)

// blockedHosts are search and AI infrastructure hosts that never make
// acceptable citation sources: redirector proxies, grounding endpoints,
// and URL shorteners. Matching is subdomain-inclusive.
var blockedHosts = []string{
	"vertexaisearch.cloud.google.com",
	"googleusercontent.com",
	"googleapis.com",
	"gstatic.com",
	"search.app",
	"g.co",
	"goo.gl",
	"bit.ly",
}

// Filter rejects URLs whose host belongs to the internal blocklist, the
// company's own domain, or a competitor domain. It is a pure predicate:
// no network access, safe for concurrent use.
type Filter struct {
	companyDomain string
	competitors   []string
}

// New builds a Filter from a company profile. The company domain is
// reduced to its registrable form (eTLD+1) so that any subdomain of the
// company site is treated as self-citation.
func New(profile citation.CompanyProfile) *Filter {
	comps := make([]string, 0, len(profile.CompetitorDomains))
	for _, d := range profile.CompetitorDomains {
		if n := normalizeDomain(d); n != "" {
			comps = append(comps, n)
		}
	}
	return &Filter{
		companyDomain: registrableDomain(profile.CompanyURL),
		competitors:   comps,
	}
}

// ShouldFilter reports whether the URL must be rejected regardless of
// reachability.
func (f *Filter) ShouldFilter(rawURL string) bool {
	host := citation.Hostname(rawURL)
	if host == "" {
		return true
	}
	for _, b := range blockedHosts {
		if hostMatches(host, b) {
			return true
		}
	}
	if f.companyDomain != "" && hostMatches(host, f.companyDomain) {
		return true
	}
	for _, c := range f.competitors {
		if hostMatches(host, c) {
			return true
		}
	}
	return false
}

// ShouldFilter is the package-level form for callers that have no Filter
// instance to reuse.
func ShouldFilter(rawURL, companyURL string, competitorDomains []string) bool {
	return New(citation.CompanyProfile{CompanyURL: companyURL, CompetitorDomains: competitorDomains}).ShouldFilter(rawURL)
}

// hostMatches reports whether host equals domain or is a subdomain of it.
// The comparison respects label boundaries: "notexample.com" does not
// match "example.com".
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// normalizeDomain lower-cases a configured domain and strips scheme,
// leading www., path, and port so that profile entries like
// "https://www.Competitor.com/about" still match.
func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" {
		return ""
	}
	if strings.Contains(d, "://") {
		return citation.Hostname(d)
	}
	if i := strings.IndexAny(d, "/:"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimPrefix(d, "www.")
}

// registrableDomain reduces a URL to its eTLD+1 so subdomains of the
// company site compare equal. Falls back to the bare host when the public
// suffix list cannot place it (localhost, bare IPs).
func registrableDomain(rawURL string) string {
	host := citation.Hostname(rawURL)
	if host == "" {
		// Profiles sometimes carry a bare domain instead of a URL.
		host = normalizeDomain(rawURL)
	}
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}
