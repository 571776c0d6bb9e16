package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func newTestSynthesizer(client *stubLLM) *synthesizer {
	return newSynthesizer(client, defaultConfig(), slog.Default())
}

func TestBuildPromptGroupsAndCaps(t *testing.T) {
	s := newTestSynthesizer(&stubLLM{})

	var chunks []Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, Chunk{
			Content:      fmt.Sprintf("leave policy passage %d", i),
			ArticleTitle: "Leave Policy",
			Similarity:   float32(5-i) / 10,
		})
	}
	chunks = append(chunks, Chunk{
		Content:      "benefits passage",
		ArticleTitle: "Benefits Guide",
		Similarity:   0.9,
	})

	quality := scoreContext(chunks, 1)
	prompt := s.buildPrompt("leave question", chunks, quality, nil)

	if !strings.Contains(prompt, "## Leave Policy") || !strings.Contains(prompt, "## Benefits Guide") {
		t.Fatalf("prompt missing article group headers:\n%s", prompt)
	}
	kept := strings.Count(prompt, "leave policy passage")
	if kept != 3 {
		t.Fatalf("kept %d passages from one article, want cap of 3", kept)
	}
	// Within the article group the strongest passages survive.
	if !strings.Contains(prompt, "leave policy passage 0") || strings.Contains(prompt, "leave policy passage 4") {
		t.Fatal("per-article cap did not keep the highest-similarity passages")
	}
	if !strings.Contains(prompt, "USER QUESTION: leave question") {
		t.Fatal("prompt missing the question")
	}
}

func TestBuildPromptTruncatesLongPassages(t *testing.T) {
	s := newTestSynthesizer(&stubLLM{})
	long := strings.Repeat("a", 900)
	chunks := []Chunk{{Content: long, ArticleTitle: "Handbook", Similarity: 0.8}}

	prompt := s.buildPrompt("q", chunks, scoreContext(chunks, 1), nil)
	if strings.Contains(prompt, long) {
		t.Fatal("900-char passage included untruncated")
	}
	if !strings.Contains(prompt, strings.Repeat("a", 800)+"...") {
		t.Fatal("truncated passage missing ellipsis marker")
	}
}

func TestBuildPromptTotalPassageCap(t *testing.T) {
	s := newTestSynthesizer(&stubLLM{})
	var chunks []Chunk
	for i := 0; i < 12; i++ {
		chunks = append(chunks, Chunk{
			Content:      fmt.Sprintf("marker-passage %d", i),
			ArticleTitle: fmt.Sprintf("Article %d", i),
			Similarity:   0.5,
		})
	}

	prompt := s.buildPrompt("q", chunks, scoreContext(chunks, 1), nil)
	if got := strings.Count(prompt, "marker-passage"); got != 8 {
		t.Fatalf("prompt includes %d passages, want total cap of 8", got)
	}
}

func TestGenerateTemperatureTiers(t *testing.T) {
	cases := []struct {
		confidence  float32
		temperature float32
	}{
		{0.8, 0.4},
		{0.6, 0.6},
		{0.4, 0.7},
	}
	for _, tc := range cases {
		client := &stubLLM{responses: []string{"All good."}}
		s := newTestSynthesizer(client)
		s.generate(context.Background(), "prompt", ContextQuality{Confidence: tc.confidence})
		if got := client.requests[0].Temperature; got != tc.temperature {
			t.Errorf("confidence %v: temperature = %v, want %v", tc.confidence, got, tc.temperature)
		}
		if client.requests[0].MaxTokens != 1000 {
			t.Errorf("confidence %v: max tokens = %d, want 1000", tc.confidence, client.requests[0].MaxTokens)
		}
	}
}

func TestGenerateApologizesOnModelFailure(t *testing.T) {
	client := &stubLLM{err: fmt.Errorf("deadline exceeded")}
	s := newTestSynthesizer(client)

	got := s.generate(context.Background(), "prompt", ContextQuality{Confidence: 0.9})
	if got != generationApology {
		t.Fatalf("got %q, want the fixed apology", got)
	}
}

func TestGenerateApologizesOnEmptyOutput(t *testing.T) {
	client := &stubLLM{responses: []string{"   "}}
	s := newTestSynthesizer(client)

	if got := s.generate(context.Background(), "prompt", ContextQuality{}); got != generationApology {
		t.Fatalf("got %q, want the fixed apology", got)
	}
}

func TestEnsureComplete(t *testing.T) {
	if got := ensureComplete("All done."); got != "All done." {
		t.Fatalf("terminal sentence altered: %q", got)
	}
	got := ensureComplete("The policy states that you")
	if !strings.HasPrefix(got, "The policy states that you...") {
		t.Fatalf("dangling sentence not marked: %q", got)
	}
	if !strings.Contains(got, "elaborate") {
		t.Fatalf("continuation offer missing: %q", got)
	}
}

func TestEnhanceKeepsOriginalOnFailure(t *testing.T) {
	client := &stubLLM{err: fmt.Errorf("rate limited")}
	s := newTestSynthesizer(client)

	original := "Original factual answer."
	if got := s.enhance(context.Background(), "q", original); got != original {
		t.Fatalf("got %q, want original preserved", got)
	}
}

func TestEnhanceReturnsRewrite(t *testing.T) {
	client := &stubLLM{responses: []string{"I understand this can be confusing. Original facts intact."}}
	s := newTestSynthesizer(client)

	got := s.enhance(context.Background(), "q", "Original facts intact.")
	if !strings.Contains(got, "confusing") {
		t.Fatalf("rewrite not returned: %q", got)
	}
	if client.requests[0].Temperature != 0.5 {
		t.Fatalf("enhance temperature = %v, want 0.5", client.requests[0].Temperature)
	}
}

func TestNoResultsFallbackUsesTemplateWhenModelFails(t *testing.T) {
	client := &stubLLM{err: fmt.Errorf("unreachable")}
	s := newTestSynthesizer(client)

	got := s.noResultsFallback(context.Background(), "mystery question")
	if !strings.Contains(got, `"mystery question"`) {
		t.Fatalf("template missing the question: %q", got)
	}
	if !strings.Contains(got, "your HR team") {
		t.Fatalf("template missing the fallback contact: %q", got)
	}
}

func TestNoResultsFallbackPrefersModelReply(t *testing.T) {
	client := &stubLLM{responses: []string{"I couldn't find that, sorry! Try asking about leave or benefits."}}
	s := newTestSynthesizer(client)

	got := s.noResultsFallback(context.Background(), "mystery question")
	if !strings.Contains(got, "Try asking") {
		t.Fatalf("model reply not used: %q", got)
	}
}
