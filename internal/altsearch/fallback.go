package altsearch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperifyio/gocite/internal/citation"
)

// Fallback fills a citation slot with the company's own URL when no
// external alternative could be validated. It always succeeds: this is
// the last line of the count-preservation guarantee.
type Fallback struct {
	Profile citation.CompanyProfile
}

// Resolve returns the company URL with a generated descriptive title.
func (f *Fallback) Resolve() Alternative {
	u := strings.TrimSpace(f.Profile.CompanyURL)
	if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return Alternative{URL: u, Title: fallbackTitle(u, f.Profile.Language)}
}

// fallbackTitle derives a readable company name from the URL's domain
// label and labels the result clearly as the official site.
func fallbackTitle(companyURL, lang string) string {
	name := companyName(companyURL, lang)
	if name == "" {
		return "Official company website and resources"
	}
	return name + " – official website and resources"
}

func companyName(companyURL, lang string) string {
	host := citation.Hostname(companyURL)
	if host == "" {
		return ""
	}
	label := host
	if i := strings.Index(label, "."); i > 0 {
		label = label[:i]
	}
	label = strings.ReplaceAll(label, "-", " ")
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.English
	}
	return cases.Title(tag).String(label)
}
