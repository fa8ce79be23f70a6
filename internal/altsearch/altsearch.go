package altsearch

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gocite/internal/citation"
	"github.com/hyperifyio/gocite/internal/domainfilter"
	"github.com/hyperifyio/gocite/internal/search"
	"github.com/hyperifyio/gocite/internal/urlcheck"
)

// ErrNoAlternative is returned when the attempt budget is exhausted with
// no acceptable candidate. Callers fall through to the fallback resolver;
// this is an expected outcome, not a failure to report upward.
var ErrNoAlternative = errors.New("no acceptable alternative url found")

// Alternative is a validated replacement for an unreachable or filtered
// citation URL.
type Alternative struct {
	URL   string
	Title string
}

// Finder locates replacement URLs for broken citations via a bounded
// number of web-search attempts. Every candidate passes the domain filter
// and reachability check before being accepted.
type Finder struct {
	Provider search.Provider
	Checker  *urlcheck.Checker
	// MaxAttempts bounds search calls per citation. Zero means default (3).
	MaxAttempts int
	// ResultsPerAttempt bounds candidates considered per search call.
	// Zero means default (5).
	ResultsPerAttempt int
}

const (
	defaultMaxAttempts       = 3
	defaultResultsPerAttempt = 5
	maxQueryLen              = 100
)

// Find returns the first candidate that survives filtering and
// reachability, searching with progressively looser query variants. A
// search backend error consumes an attempt and moves on; only budget
// exhaustion surfaces, as ErrNoAlternative.
func (f *Finder) Find(ctx context.Context, title string, profile citation.CompanyProfile) (Alternative, error) {
	if f.Provider == nil || f.Checker == nil {
		return Alternative{}, errors.New("finder not configured")
	}
	attempts := f.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	perAttempt := f.ResultsPerAttempt
	if perAttempt <= 0 {
		perAttempt = defaultResultsPerAttempt
	}
	filter := domainfilter.New(profile)
	queries := queryVariants(title, attempts)

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return Alternative{}, err
		}
		query := queries[i%len(queries)]
		results, err := f.Provider.Search(ctx, query, perAttempt)
		if err != nil {
			log.Debug().Err(err).Str("query", query).Msg("alternative search attempt failed")
			continue
		}
		for _, r := range results {
			u := citation.NormalizeURL(r.URL)
			if filter.ShouldFilter(u) {
				continue
			}
			st := f.Checker.Check(ctx, u)
			if !st.Reachable {
				continue
			}
			alt := Alternative{URL: st.FinalURL, Title: pickTitle(r.Title, st.PageTitle, title)}
			log.Debug().Str("url", alt.URL).Str("source", r.Source).Msg("alternative accepted")
			return alt, nil
		}
	}
	return Alternative{}, ErrNoAlternative
}

// pickTitle prefers the search result's own title, then the fetched page
// title, then the original citation title.
func pickTitle(resultTitle, pageTitle, original string) string {
	if t := strings.TrimSpace(resultTitle); t != "" {
		return t
	}
	if t := strings.TrimSpace(pageTitle); t != "" {
		return t
	}
	return strings.TrimSpace(original)
}

var leadingMarkerRe = regexp.MustCompile(`^\s*\[\d+\]\s*:?\s*`)

// queryVariants builds up to n query strings from a citation title, most
// specific first: the cleaned title, a shortened head, then a keyword
// core. Re-sending an identical query wastes an attempt.
func queryVariants(title string, n int) []string {
	base := CleanQuery(title)
	variants := []string{base}
	if words := strings.Fields(base); len(words) > 8 {
		variants = append(variants, strings.Join(words[:8], " "))
	}
	if kw := keywordCore(base); kw != "" && kw != base {
		variants = append(variants, kw)
	}
	if len(variants) > n {
		variants = variants[:n]
	}
	return variants
}

// CleanQuery strips the leading [n] citation marker, collapses whitespace,
// and truncates to a search-friendly length on a word boundary.
func CleanQuery(title string) string {
	s := leadingMarkerRe.ReplaceAllString(title, "")
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxQueryLen {
		return s
	}
	cut := s[:maxQueryLen]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}

// keywordCore keeps the most contentful words of a query: 4+ characters,
// first six of them, original order.
func keywordCore(q string) string {
	kept := make([]string, 0, 6)
	for _, w := range strings.Fields(q) {
		if len(strings.Trim(w, ".,:;!?()[]\"'")) >= 4 {
			kept = append(kept, w)
			if len(kept) == 6 {
				break
			}
		}
	}
	return strings.Join(kept, " ")
}
