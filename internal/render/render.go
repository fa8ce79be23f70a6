package render

import (
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/gocite/internal/citation"
)

// HTML renders a finalized citation list as the fragment consumed by the
// page renderer: one paragraph per citation in ascending number order,
// links opening in a new tab. An empty list renders as the empty string.
func HTML(list citation.List) string {
	if len(list) == 0 {
		return ""
	}
	sorted := make(citation.List, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	var sb strings.Builder
	for _, c := range sorted {
		sb.WriteString("<p>[")
		sb.WriteString(strconv.Itoa(c.Number))
		sb.WriteString(`]: <a href="`)
		sb.WriteString(html.EscapeString(c.URL))
		sb.WriteString(`" target="_blank" rel="noopener noreferrer">`)
		sb.WriteString(html.EscapeString(title(c)))
		sb.WriteString("</a></p>\n")
	}
	return sb.String()
}

// title never renders an empty anchor: a citation without a title shows
// its URL instead.
func title(c citation.Citation) string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return c.URL
}
