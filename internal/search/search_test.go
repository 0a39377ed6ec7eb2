package search

import (
	"encoding/json"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
)

func rawHit(fields map[string]any) meili.Hit {
	h := make(meili.Hit, len(fields))
	for k, v := range fields {
		b, _ := json.Marshal(v)
		h[k] = b
	}
	return h
}

func TestSearchFallsBackWhenMeiliAbsent(t *testing.T) {
	svc := NewService(nil, &PgFTS{})

	resp := svc.Search(Query{Text: "   "})
	if resp.Results == nil {
		t.Fatal("expected non-nil results slice")
	}
	if len(resp.Results) != 0 || resp.Total != 0 {
		t.Fatalf("expected empty response, got %d results total %d", len(resp.Results), resp.Total)
	}
}

func TestSearchFallsBackWhenMeiliUnhealthy(t *testing.T) {
	m := &Meili{done: make(chan struct{})}
	svc := NewService(m, &PgFTS{})

	resp := svc.Search(Query{Text: ""})
	if len(resp.Results) != 0 || resp.Total != 0 {
		t.Fatalf("expected empty response, got %d results total %d", len(resp.Results), resp.Total)
	}
}

func TestHitToResultPrefersHighlightedFields(t *testing.T) {
	hit := rawHit(map[string]any{
		"id":           "answer-1",
		"sessionId":    "session-1",
		"questionText": "Team size?",
		"value":        "about fifty",
		"_formatted": map[string]string{
			"questionText": "Team size?",
			"value":        "about <mark>fifty</mark>",
		},
	})

	r := hitToResult(hit, ResultAnswer)
	if r.ID != "answer-1" || r.SessionID != "session-1" {
		t.Fatalf("unexpected identity fields: %+v", r)
	}
	if r.Title != "Team size?" {
		t.Fatalf("title = %q", r.Title)
	}
	if r.Snippet != "about <mark>fifty</mark>" {
		t.Fatalf("snippet = %q", r.Snippet)
	}
}

func TestHitToResultContactFallsBackToRawFields(t *testing.T) {
	hit := rawHit(map[string]any{
		"id":          "contact-1",
		"sessionId":   "session-1",
		"name":        "Sam",
		"companyName": "Acme",
		"workEmail":   "sam@acme.test",
	})

	r := hitToResult(hit, ResultContact)
	if r.Title != "Sam" {
		t.Fatalf("title = %q", r.Title)
	}
	if r.Snippet != "Acme" {
		t.Fatalf("snippet = %q", r.Snippet)
	}
}

func TestFirstNonBlank(t *testing.T) {
	if got := firstNonBlank("", "  ", "x", "y"); got != "x" {
		t.Fatalf("got %q", got)
	}
	if got := firstNonBlank("", "  "); got != "" {
		t.Fatalf("got %q", got)
	}
}
