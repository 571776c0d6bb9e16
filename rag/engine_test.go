package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/adanianlabs/hrassist/kb"
	"github.com/adanianlabs/hrassist/llm"
	"github.com/adanianlabs/hrassist/message"
)

func TestAskProducesGroundedAnswer(t *testing.T) {
	ctx := context.Background()

	client := &stubLLM{responses: []string{
		`{"main_topic":"leave","key_terms":["annual","leave","days"],"search_keywords":["annual leave entitlement","leave"],"intent":"informational"}`,
		"You are entitled to 21 days of annual leave per the Leave Policy. Let me know if I can help further.",
	}}
	searcher := &stubSearcher{hits: map[float32][]kb.Match{
		0.5: {
			{Content: strings.Repeat("annual leave entitlement details ", 30), ArticleTitle: "Leave Policy", Similarity: 0.82},
			{Content: strings.Repeat("carry-over rules for unused days ", 30), ArticleTitle: "Leave Policy", Similarity: 0.74},
		},
	}}

	engine, err := NewEngine(client, searcher)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}

	answer := engine.Ask(ctx, "How many days of annual leave do I get?")
	if answer == nil {
		t.Fatal("expected an envelope, got nil")
	}
	if answer.QueryType != QueryTypeDocument {
		t.Fatalf("query type = %q, want document_query", answer.QueryType)
	}
	if !strings.Contains(answer.Answer, "21 days") {
		t.Fatalf("answer lost the generated text: %q", answer.Answer)
	}
	if answer.SourcesUsed != 1 {
		t.Fatalf("sources used = %d, want 1 distinct article", answer.SourcesUsed)
	}
	if answer.ConfidenceScore <= 0 {
		t.Fatalf("confidence = %v, want > 0", answer.ConfidenceScore)
	}
	if len(answer.Chunks) == 0 {
		t.Fatal("expected retrieved chunks on the envelope by default")
	}
}

func TestAskWithoutSourcesOmitsChunks(t *testing.T) {
	client := &stubLLM{responses: []string{
		`{"main_topic":"benefits","key_terms":[],"search_keywords":["benefits"],"intent":"informational"}`,
		"The medical plan covers dependents.",
	}}
	searcher := &stubSearcher{hits: map[float32][]kb.Match{
		0.5: {{Content: strings.Repeat("medical coverage ", 40), ArticleTitle: "Benefits Guide", Similarity: 0.8}},
	}}

	engine, err := NewEngine(client, searcher)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}

	answer := engine.Ask(context.Background(), "What does the benefits plan cover?", WithoutSources())
	if len(answer.Chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(answer.Chunks))
	}
	if answer.SourcesUsed != 1 {
		t.Fatalf("sources used = %d, want diversity preserved without chunk payload", answer.SourcesUsed)
	}
}

func TestAskNoResultsFallback(t *testing.T) {
	client := &stubLLM{err: fmt.Errorf("model unavailable")}
	searcher := &stubSearcher{} // no hits at any threshold

	engine, err := NewEngine(client, searcher, WithFallbackContact("the People team"))
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}

	answer := engine.Ask(context.Background(), "zxqv flarn")
	if answer.SourcesUsed != 0 {
		t.Fatalf("sources used = %d, want 0", answer.SourcesUsed)
	}
	if answer.ConfidenceScore > 0.3 {
		t.Fatalf("confidence = %v, want <= 0.3", answer.ConfidenceScore)
	}
	if answer.Coverage != CoverageNone {
		t.Fatalf("coverage = %q, want none", answer.Coverage)
	}
	if !strings.Contains(answer.Answer, "the People team") {
		t.Fatalf("fallback answer missing contact hint: %q", answer.Answer)
	}
}

// A dead model and a dead searcher must still yield a well-formed envelope.
func TestAskNeverReturnsNil(t *testing.T) {
	client := &stubLLM{err: fmt.Errorf("model unavailable")}
	searcher := &stubSearcher{err: fmt.Errorf("vector store down")}

	engine, err := NewEngine(client, searcher)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}

	answer := engine.Ask(context.Background(), "What is the leave policy?")
	if answer == nil {
		t.Fatal("expected an envelope, got nil")
	}
	if answer.Answer == "" {
		t.Fatal("expected a non-empty answer text")
	}
	if answer.ConfidenceScore != 0 {
		t.Fatalf("confidence = %v, want 0", answer.ConfidenceScore)
	}
}

func TestNewEngineRequiresCollaborators(t *testing.T) {
	if _, err := NewEngine(nil, &stubSearcher{}); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewEngine(&stubLLM{}, nil); err == nil {
		t.Fatal("expected error for nil searcher")
	}
}

func TestPreprocessQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  what   is\tthe leave policy ", "what is the leave policy"},
		{"when do reviews happen", "HR when do reviews happen"},
		{"Employee benefits overview", "Employee benefits overview"},
	}
	for _, tc := range cases {
		if got := preprocessQuery(tc.in); got != tc.want {
			t.Errorf("preprocessQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// stubLLM replays scripted responses in order, repeating the last one, and
// records every request it sees.
type stubLLM struct {
	responses []string
	err       error
	requests  []*llm.Request
}

func (s *stubLLM) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	text := ""
	if len(s.responses) > 0 {
		i := len(s.requests) - 1
		if i >= len(s.responses) {
			i = len(s.responses) - 1
		}
		text = s.responses[i]
	}
	return &llm.Response{Message: message.NewMessage(message.RoleAssistant, text)}, nil
}

// stubSearcher returns canned hits per threshold and counts calls.
type stubSearcher struct {
	hits  map[float32][]kb.Match
	err   error
	calls int
}

func (s *stubSearcher) SearchChunks(ctx context.Context, query string, threshold float32, limit int) ([]kb.Match, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	matches := s.hits[threshold]
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
