package extract

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gocite/internal/citation"
)

// ParseSources turns an LLM-authored sources block into an ordered
// citation list. Lines loosely match "[n]: url – description" with any
// dash variant; commentary and malformed lines are skipped, never fatal.
// The result is renumbered sequentially, and an input with no
// recognizable citation yields an empty list, which downstream stages
// treat as a valid, renderable state.
func ParseSources(text string) citation.List {
	var out citation.List
	for _, line := range strings.Split(text, "\n") {
		c, ok := parseLine(line)
		if !ok {
			continue
		}
		out = append(out, citation.New(len(out)+1, c.URL, c.Title))
	}
	if len(out) == 0 && strings.TrimSpace(text) != "" {
		log.Debug().Int("chars", len(text)).Msg("sources block contained no recognizable citations")
	}
	return out
}

var (
	lineRe = regexp.MustCompile(`^\s*\[(\d+)\]\s*[:.]?\s*(.+)$`)
	urlRe  = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)
	// dashSplitRe separates the URL part from the description. Hyphen,
	// en dash, and em dash all appear in model output.
	dashSplitRe = regexp.MustCompile(`\s+[-\x{2013}\x{2014}]\s+`)
)

func parseLine(line string) (citation.Citation, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return citation.Citation{}, false
	}
	rest := strings.TrimSpace(m[2])

	var urlPart, title string
	if loc := dashSplitRe.FindStringIndex(rest); loc != nil {
		urlPart = strings.TrimSpace(rest[:loc[0]])
		title = strings.TrimSpace(rest[loc[1]:])
	} else {
		urlPart = rest
	}

	rawURL := urlRe.FindString(urlPart)
	if rawURL == "" {
		// URL sometimes lands on the description side of the dash.
		rawURL = urlRe.FindString(rest)
		if rawURL == "" {
			return citation.Citation{}, false
		}
	}
	rawURL = strings.TrimRight(rawURL, ".,;")

	if title == "" {
		// Fall back to whatever prose the line carries besides the URL.
		title = strings.TrimSpace(strings.Replace(rest, rawURL, "", 1))
		title = strings.Trim(title, " -–—:")
	}
	return citation.Citation{URL: citation.NormalizeURL(rawURL), Title: title}, true
}
