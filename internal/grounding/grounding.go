package grounding

import (
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/hyperifyio/gocite/internal/citation"
)

// Enhancer upgrades citations whose URL is domain-only or near-domain-only
// to a more specific grounding URL surfaced during research. It never
// changes citation count and never invents a URL absent from the grounding
// set.
type Enhancer struct {
	// byDomain indexes grounding entries by registrable domain. A domain
	// can carry several candidate articles.
	byDomain map[string][]citation.GroundingURL
}

// New builds an Enhancer from the unordered grounding hints. Entries
// without a parseable URL are dropped.
func New(urls []citation.GroundingURL) *Enhancer {
	idx := make(map[string][]citation.GroundingURL, len(urls))
	for _, g := range urls {
		d := g.Domain
		if d == "" {
			d = registrableDomain(g.URL)
		} else {
			d = registrableDomainOfHost(d)
		}
		if d == "" {
			continue
		}
		idx[d] = append(idx[d], g)
	}
	return &Enhancer{byDomain: idx}
}

// Enhance returns a copy of the list with under-specified URLs upgraded.
// A citation qualifies when its URL has at most one meaningful path
// segment; citations with a specific multi-segment path are only replaced
// by a grounding URL with a strictly longer path.
func (e *Enhancer) Enhance(list citation.List) citation.List {
	if len(e.byDomain) == 0 || len(list) == 0 {
		return list
	}
	out := make(citation.List, len(list))
	copy(out, list)
	for i, c := range out {
		domain := registrableDomain(c.URL)
		if domain == "" {
			continue
		}
		candidates := e.byDomain[domain]
		if len(candidates) == 0 {
			continue
		}
		best := bestMatch(c.Title, candidates)
		segs := len(citation.PathSegments(c.URL))
		switch {
		case segs <= 1:
			// domain-only or near-domain-only: always upgrade
		case len(citation.PathSegments(best.URL)) > segs:
			// already specific: only a strictly more specific path wins
		default:
			continue
		}
		if best.URL == "" || best.URL == c.URL {
			continue
		}
		log.Debug().Int("number", c.Number).Str("from", c.URL).Str("to", best.URL).Msg("citation enhanced from grounding")
		out[i].URL = best.URL
	}
	return out
}

// bestMatch picks the grounding entry whose title shares the most words
// with the citation title. Ties keep the first entry, so a single
// candidate always wins trivially.
func bestMatch(title string, candidates []citation.GroundingURL) citation.GroundingURL {
	best := candidates[0]
	bestScore := overlapScore(title, best.Title)
	for _, g := range candidates[1:] {
		if s := overlapScore(title, g.Title); s > bestScore {
			best, bestScore = g, s
		}
	}
	return best
}

// overlapScore counts distinct words (3+ chars, case-folded) shared
// between two titles. Short stop-ish words carry no signal for
// disambiguating articles on the same domain.
func overlapScore(a, b string) int {
	wordsA := titleWords(a)
	if len(wordsA) == 0 {
		return 0
	}
	score := 0
	for w := range titleWords(b) {
		if wordsA[w] {
			score++
			wordsA[w] = false
		}
	}
	return score
}

func titleWords(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,:;!?()[]\"'")
		if len(w) >= 3 {
			out[w] = true
		}
	}
	return out
}

func registrableDomain(rawURL string) string {
	return registrableDomainOfHost(citation.Hostname(rawURL))
}

func registrableDomainOfHost(host string) string {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}
