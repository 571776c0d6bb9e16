package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk is one bounded piece of a source document.
type Chunk struct {
	Content    string
	TokenCount int
	Index      int
}

var (
	sectionRegex  = regexp.MustCompile(`\n\s*(?:[A-Z][A-Za-z\s]{10,}:|\d+\.\s+[A-Z])`)
	sentenceRegex = regexp.MustCompile(`(?:[.!?])\s+`)
)

// Chunker splits document text into token-bounded chunks, preferring section
// and paragraph boundaries so retrieved passages stay self-contained.
type Chunker struct {
	maxTokens     int
	overlapTokens int
	enc           *tiktoken.Tiktoken
}

// Option customises the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the token budget per chunk (default 600).
func WithMaxTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.maxTokens = tokens
		}
	}
}

// WithOverlapTokens sets how many tokens of trailing context carry over into
// the next chunk (default 150).
func WithOverlapTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapTokens = tokens
		}
	}
}

// NewChunker creates a token-aware chunker backed by the cl100k_base encoding.
func NewChunker(opts ...Option) (*Chunker, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer encoding: %w", err)
	}
	c := &Chunker{
		maxTokens:     600,
		overlapTokens: 150,
		enc:           enc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CountTokens returns the token count of text under the chunker's encoding.
func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Chunk splits text into token-bounded chunks. Sections are split first, then
// paragraphs; paragraphs that alone exceed most of the budget are further split
// by sentences. Consecutive chunks share up to overlapTokens of trailing text.
func (c *Chunker) Chunk(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		content := strings.TrimSpace(strings.Join(current, "\n\n"))
		if content == "" {
			current = current[:0]
			currentTokens = 0
			return
		}
		chunks = append(chunks, Chunk{
			Content:    content,
			TokenCount: currentTokens,
			Index:      len(chunks),
		})
		current = c.overlapTail(current)
		currentTokens = c.countAll(current)
	}

	for _, section := range splitSections(text) {
		for _, part := range c.splitParts(section) {
			partTokens := c.CountTokens(part)
			if currentTokens+partTokens > c.maxTokens && len(current) > 0 {
				flush()
			}
			current = append(current, part)
			currentTokens += partTokens
		}
	}
	if currentTokens > 0 && len(current) > 0 {
		content := strings.TrimSpace(strings.Join(current, "\n\n"))
		if content != "" {
			chunks = append(chunks, Chunk{
				Content:    content,
				TokenCount: currentTokens,
				Index:      len(chunks),
			})
		}
	}
	return chunks
}

// splitParts breaks a section into paragraphs, expanding oversized paragraphs
// into sentences.
func (c *Chunker) splitParts(section string) []string {
	var parts []string
	for _, para := range strings.Split(section, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if c.CountTokens(para) > c.maxTokens*8/10 {
			parts = append(parts, splitSentences(para)...)
			continue
		}
		parts = append(parts, para)
	}
	return parts
}

// overlapTail keeps the trailing parts whose combined token count fits in the
// overlap budget.
func (c *Chunker) overlapTail(parts []string) []string {
	if c.overlapTokens <= 0 || len(parts) == 0 {
		return nil
	}
	total := 0
	start := len(parts)
	for i := len(parts) - 1; i >= 0; i-- {
		tokens := c.CountTokens(parts[i])
		if total+tokens > c.overlapTokens {
			break
		}
		total += tokens
		start = i
	}
	if start == len(parts) {
		return nil
	}
	tail := make([]string, len(parts)-start)
	copy(tail, parts[start:])
	return tail
}

func (c *Chunker) countAll(parts []string) int {
	total := 0
	for _, p := range parts {
		total += c.CountTokens(p)
	}
	return total
}

func splitSections(text string) []string {
	indexes := sectionRegex.FindAllStringIndex(text, -1)
	if len(indexes) == 0 {
		return []string{text}
	}
	var sections []string
	prev := 0
	for _, idx := range indexes {
		if idx[0] > prev {
			sections = append(sections, text[prev:idx[0]])
		}
		prev = idx[0]
	}
	sections = append(sections, text[prev:])
	return sections
}

func splitSentences(para string) []string {
	indexes := sentenceRegex.FindAllStringIndex(para, -1)
	if len(indexes) == 0 {
		return []string{para}
	}
	var sentences []string
	prev := 0
	for _, idx := range indexes {
		sentence := strings.TrimSpace(para[prev:idx[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		prev = idx[1]
	}
	if rest := strings.TrimSpace(para[prev:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
