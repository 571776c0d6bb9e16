package ingest

import (
	"fmt"
	"strings"
	"testing"
)

func newTestChunker(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	c, err := NewChunker(opts...)
	if err != nil {
		t.Fatalf("NewChunker error: %v", err)
	}
	return c
}

func TestChunkEmptyText(t *testing.T) {
	c := newTestChunker(t)
	if got := c.Chunk("   \n  "); got != nil {
		t.Fatalf("expected nil for blank input, got %d chunks", len(got))
	}
}

func TestChunkShortTextSingleChunk(t *testing.T) {
	c := newTestChunker(t)
	text := "Annual leave accrues at 1.75 days per month of service."

	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != text {
		t.Fatalf("content altered: %q", chunks[0].Content)
	}
	if chunks[0].Index != 0 {
		t.Fatalf("index = %d, want 0", chunks[0].Index)
	}
	if chunks[0].TokenCount <= 0 {
		t.Fatalf("token count = %d, want > 0", chunks[0].TokenCount)
	}
}

func TestChunkRespectsTokenBudget(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(60), WithOverlapTokens(0))

	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Paragraph %d explains one aspect of the probation process in a reasonable amount of detail.\n\n", i)
	}

	chunks := c.Chunk(b.String())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want the budget to force a split", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.Content == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestChunkOverlapCarriesTrailingText(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(60), WithOverlapTokens(30))

	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Distinct paragraph %d about contract renewal timing and required notice.\n\n", i)
	}

	chunks := c.Chunk(b.String())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	overlapped := false
	for i := 1; i < len(chunks); i++ {
		prevLines := strings.Split(chunks[i-1].Content, "\n\n")
		tail := prevLines[len(prevLines)-1]
		if strings.Contains(chunks[i].Content, tail) {
			overlapped = true
			break
		}
	}
	if !overlapped {
		t.Fatal("no chunk carried over trailing text from its predecessor")
	}
}

func TestChunkSplitsOversizedParagraphBySentence(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(40), WithOverlapTokens(0))

	var b strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "Sentence number %d continues the same very long paragraph about benefits enrollment. ", i)
	}

	chunks := c.Chunk(b.String())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want sentence-level splitting of the oversized paragraph", len(chunks))
	}
}

func TestCountTokensMonotonic(t *testing.T) {
	c := newTestChunker(t)
	short := c.CountTokens("leave policy")
	long := c.CountTokens("leave policy with many additional qualifying words attached")
	if short <= 0 {
		t.Fatalf("short count = %d, want > 0", short)
	}
	if long <= short {
		t.Fatalf("longer text counted %d tokens, shorter %d", long, short)
	}
}
