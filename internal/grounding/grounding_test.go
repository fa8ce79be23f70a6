package grounding

import (
	"testing"

	"github.com/hyperifyio/gocite/internal/citation"
)

func TestEnhance_DomainOnlyUpgraded(t *testing.T) {
	g := []citation.GroundingURL{
		{URL: "https://gartner.com/research/2025-report", Title: "Gartner", Domain: "gartner.com"},
	}
	list := citation.List{{Number: 1, URL: "https://gartner.com", Title: "Gartner"}}

	out := New(g).Enhance(list)
	if len(out) != 1 {
		t.Fatalf("count changed: %d", len(out))
	}
	if out[0].URL != "https://gartner.com/research/2025-report" {
		t.Fatalf("domain-only citation not upgraded, got %q", out[0].URL)
	}
}

func TestEnhance_TitleOverlapDisambiguates(t *testing.T) {
	g := []citation.GroundingURL{
		{URL: "https://example.com/cloud-security-trends", Title: "Cloud security trends report"},
		{URL: "https://example.com/devops-hiring", Title: "DevOps hiring survey results"},
	}
	list := citation.List{{Number: 1, URL: "https://example.com/", Title: "Survey of DevOps hiring practices"}}

	out := New(g).Enhance(list)
	if out[0].URL != "https://example.com/devops-hiring" {
		t.Fatalf("expected title-overlap match, got %q", out[0].URL)
	}
}

func TestEnhance_TieKeepsFirst(t *testing.T) {
	g := []citation.GroundingURL{
		{URL: "https://example.com/first", Title: "alpha beta"},
		{URL: "https://example.com/second", Title: "gamma delta"},
	}
	list := citation.List{{Number: 1, URL: "https://example.com", Title: "unrelated words entirely"}}

	out := New(g).Enhance(list)
	if out[0].URL != "https://example.com/first" {
		t.Fatalf("tie must keep the first entry, got %q", out[0].URL)
	}
}

func TestEnhance_SpecificPathOnlyUpgradedByLongerPath(t *testing.T) {
	list := citation.List{{Number: 1, URL: "https://example.com/blog/post", Title: "A post about things"}}

	same := New([]citation.GroundingURL{
		{URL: "https://example.com/other/page", Title: "A post about things"},
	}).Enhance(list)
	if same[0].URL != "https://example.com/blog/post" {
		t.Fatalf("equal-length path must not replace a specific URL, got %q", same[0].URL)
	}

	longer := New([]citation.GroundingURL{
		{URL: "https://example.com/blog/2025/06/post", Title: "A post about things"},
	}).Enhance(list)
	if longer[0].URL != "https://example.com/blog/2025/06/post" {
		t.Fatalf("strictly longer path must replace, got %q", longer[0].URL)
	}
}

func TestEnhance_NoGroundingForDomain(t *testing.T) {
	g := []citation.GroundingURL{
		{URL: "https://other.com/article", Title: "Elsewhere"},
	}
	list := citation.List{{Number: 1, URL: "https://example.com", Title: "Example"}}

	out := New(g).Enhance(list)
	if out[0].URL != "https://example.com" {
		t.Fatalf("citation must be untouched when its domain has no grounding entry")
	}
}

func TestEnhance_SubdomainSharesRegistrableDomain(t *testing.T) {
	g := []citation.GroundingURL{
		{URL: "https://www.gartner.com/research/2025-report", Title: "Gartner report"},
	}
	list := citation.List{{Number: 1, URL: "https://blog.gartner.com/", Title: "Gartner report"}}

	out := New(g).Enhance(list)
	if out[0].URL != "https://www.gartner.com/research/2025-report" {
		t.Fatalf("www/subdomain variants share a registrable domain, got %q", out[0].URL)
	}
}

func TestEnhance_CountPreserved(t *testing.T) {
	g := []citation.GroundingURL{{URL: "https://a.com/x", Title: "x"}}
	list := citation.List{
		{Number: 1, URL: "https://a.com", Title: "a"},
		{Number: 2, URL: "https://b.com", Title: "b"},
		{Number: 3, URL: "https://c.com/deep/path", Title: "c"},
	}
	out := New(g).Enhance(list)
	if len(out) != len(list) {
		t.Fatalf("enhance changed citation count: %d != %d", len(out), len(list))
	}
}
