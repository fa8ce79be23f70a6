package validate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gocite/internal/altsearch"
	"github.com/hyperifyio/gocite/internal/citation"
	"github.com/hyperifyio/gocite/internal/domainfilter"
	"github.com/hyperifyio/gocite/internal/grounding"
	"github.com/hyperifyio/gocite/internal/urlcheck"
)

// ErrQualityGate is returned when a configured minimum valid-citation
// ratio is not met. The gate is disabled by default.
var ErrQualityGate = fmt.Errorf("validated citation ratio below configured minimum")

// Coordinator runs the per-citation pipeline (enhance, check, repair)
// concurrently across a list, then renumbers sequentially in original
// order. Per-citation failures are absorbed into fallback outcomes; the
// pass as a whole only fails on context cancellation or the optional
// quality gate.
type Coordinator struct {
	Checker *urlcheck.Checker
	Finder  *altsearch.Finder
	// MinValidRatio, when > 0, fails the pass unless at least this share
	// of citations validated without falling back to the company URL.
	// Zero keeps validation best-effort, which is the shipped behavior.
	MinValidRatio float64
}

// Validate checks and repairs every citation concurrently. The returned
// list preserves count and input order, with numbers renumbered 1..N.
// On context cancellation no partial list is returned: the pass is
// all-or-nothing at that boundary.
func (co *Coordinator) Validate(ctx context.Context, list citation.List, groundingURLs []citation.GroundingURL, profile citation.CompanyProfile) (citation.List, []citation.Result, error) {
	if len(list) == 0 {
		return citation.List{}, nil, nil
	}

	enhanced := grounding.New(groundingURLs).Enhance(list)
	filter := domainfilter.New(profile)
	fallback := &altsearch.Fallback{Profile: profile}

	out := make(citation.List, len(enhanced))
	results := make([]citation.Result, len(enhanced))

	// Fan out one task per citation. Each task owns exactly its own index
	// in out/results, so no lock guards the slices; the WaitGroup is the
	// only barrier.
	var wg sync.WaitGroup
	for i, c := range enhanced {
		wg.Add(1)
		go func(i int, c citation.Citation) {
			defer wg.Done()
			out[i], results[i] = co.validateOne(ctx, c, filter, fallback, profile)
		}(i, c)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Single sequential renumbering pass, in original order.
	for i := range out {
		out[i].Number = i + 1
	}

	if co.MinValidRatio > 0 {
		valid := 0
		for _, r := range results {
			if r.Outcome != citation.OutcomeFallback {
				valid++
			}
		}
		if ratio := float64(valid) / float64(len(results)); ratio < co.MinValidRatio {
			log.Warn().Float64("ratio", ratio).Float64("min", co.MinValidRatio).Msg("citation quality gate failed")
			return nil, nil, ErrQualityGate
		}
	}
	return out, results, nil
}

// validateOne runs the state machine for one citation. It never lets a
// failure escape: panics and network errors both collapse into the
// fallback outcome so the slot is always filled.
func (co *Coordinator) validateOne(ctx context.Context, c citation.Citation, filter *domainfilter.Filter, fallback *altsearch.Fallback, profile citation.CompanyProfile) (fixed citation.Citation, res citation.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("number", c.Number).Interface("panic", r).Msg("citation pipeline panic; using fallback")
			fb := fallback.Resolve()
			fixed = citation.Citation{Number: c.Number, URL: fb.URL, Title: fb.Title}
			res = citation.Result{URL: fb.URL, Title: fb.Title, Outcome: citation.OutcomeFallback, Issues: []string{fmt.Sprintf("pipeline panic: %v", r)}}
		}
	}()

	var issues []string

	if filter.ShouldFilter(c.URL) {
		issues = append(issues, "filtered domain: "+c.URL)
	} else {
		st := co.Checker.Check(ctx, c.URL)
		if st.Reachable {
			return citation.Citation{Number: c.Number, URL: st.FinalURL, Title: c.Title},
				citation.Result{Valid: true, URL: st.FinalURL, Title: c.Title, Outcome: citation.OutcomeOriginal}
		}
		issues = append(issues, "unreachable: "+c.URL)
	}

	alt, err := co.Finder.Find(ctx, c.Title, profile)
	if err == nil {
		return citation.Citation{Number: c.Number, URL: alt.URL, Title: alt.Title},
			citation.Result{Valid: true, URL: alt.URL, Title: alt.Title, Outcome: citation.OutcomeAlternative, Issues: issues}
	}
	if err != altsearch.ErrNoAlternative {
		issues = append(issues, "alternative search: "+err.Error())
	}

	fb := fallback.Resolve()
	return citation.Citation{Number: c.Number, URL: fb.URL, Title: fb.Title},
		citation.Result{Valid: true, URL: fb.URL, Title: fb.Title, Outcome: citation.OutcomeFallback, Issues: issues}
}
