package citation

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Citation is a single numbered source reference extracted from a sources
// block. URL always carries an explicit scheme; a missing scheme is
// normalized to https:// at construction.
type Citation struct {
	Number int
	URL    string
	Title  string
}

// List is an ordered citation list. Numbers are unique and, after the
// validation pass has finalized the list, contiguous starting at 1.
type List []Citation

// GroundingURL is a side-channel hint surfaced by the research step: a
// specific article URL known to be good for a given domain. The validation
// subsystem looks these up by domain and never mutates them.
type GroundingURL struct {
	URL    string
	Title  string
	Domain string
}

// CompanyProfile carries the caller-supplied company identity used for
// domain filtering and fallback resolution. Read-only for this subsystem.
type CompanyProfile struct {
	CompanyURL        string
	CompetitorDomains []string
	Language          string
}

// Outcome records why a citation's final URL was chosen.
type Outcome int

const (
	// OutcomeOriginal means the extracted URL survived validation unchanged.
	OutcomeOriginal Outcome = iota
	// OutcomeAlternative means the URL was replaced by a validated search hit.
	OutcomeAlternative
	// OutcomeFallback means the slot was filled with the company's own URL.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOriginal:
		return "original_url"
	case OutcomeAlternative:
		return "alternative_found"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the per-citation outcome produced by the validation pass.
type Result struct {
	Valid   bool
	URL     string
	Title   string
	Outcome Outcome
	// Issues lists human-readable reasons the original URL was rejected or
	// repaired. Empty for citations that validated as-is.
	Issues []string
}

const (
	minTitleWords = 3
	maxTitleWords = 25
)

// New constructs a Citation, normalizing a scheme-less URL to https:// and
// warning (never rejecting) when the title falls outside the expected
// 3-25 word range.
func New(number int, rawURL, title string) Citation {
	u := strings.TrimSpace(rawURL)
	if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + strings.TrimPrefix(u, "//")
	}
	title = strings.TrimSpace(title)
	if n := len(strings.Fields(title)); title != "" && (n < minTitleWords || n > maxTitleWords) {
		log.Warn().Int("number", number).Int("words", n).Msg("citation title outside expected length")
	}
	return Citation{Number: number, URL: u, Title: title}
}

// NormalizeURL canonicalizes a URL for comparison and storage: lower-cased
// host, no fragment, default ports dropped, and common tracking parameters
// removed. Invalid input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}
	q := u.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Hostname returns the lower-cased host of a URL without a leading www.
// prefix or port, or "" when the URL cannot be parsed.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	h := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(h, "www.")
}

// PathSegments returns the meaningful path segments of a URL: empty
// segments and a bare trailing slash do not count.
func PathSegments(raw string) []string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	parts := strings.Split(u.Path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
