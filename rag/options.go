package rag

// Config controls behaviour of the answer engine: retrieval widening, context
// quality scoring, and synthesis. It groups prompt knobs and low-level
// retrieval parameters so callers can construct reproducible engines from a
// single struct.
type Config struct {
	Name string // Logical name for tracing/logging

	TopK          int       // How many chunks the retriever may return overall
	Thresholds    []float32 // Similarity thresholds tried in descending strictness
	HitsPerSearch int       // Result cap per individual vector search call
	MaxVariations int       // Upper bound on generated search variations

	MinChunksForConfidence int     // Chunk count considered sufficient for full count credit
	MaxChunksPerArticle    int     // Passages kept per source article when building the prompt
	MaxPassageChars        int     // Passage bodies longer than this are truncated
	MaxPassages            int     // Total passages included across all articles
	EnhanceBelowConfidence float32 // Run the empathetic rewrite pass below this confidence

	IntentPrompt    string // System prompt for the intent analysis call
	FallbackContact string // Human channel suggested when no answer is possible
}

// Option customises the engine configuration.
type Option func(*Config)

// WithName sets the logical engine name used in logs.
func WithName(name string) Option {
	return func(cfg *Config) {
		if name != "" {
			cfg.Name = name
		}
	}
}

// WithTopK caps how many chunks the retriever accumulates per question.
func WithTopK(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.TopK = k
		}
	}
}

// WithThresholds replaces the progressive similarity thresholds. Values are
// tried in the order given; the first threshold that yields any hits wins.
func WithThresholds(thresholds ...float32) Option {
	return func(cfg *Config) {
		if len(thresholds) > 0 {
			cfg.Thresholds = thresholds
		}
	}
}

// WithStrictRetrieval restores the single-threshold behaviour of the earlier
// engine generation: one pass at 0.65 with no widening.
func WithStrictRetrieval() Option {
	return func(cfg *Config) {
		cfg.Thresholds = []float32{0.65}
	}
}

// WithHitsPerSearch caps results per individual vector search call.
func WithHitsPerSearch(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.HitsPerSearch = n
		}
	}
}

// WithMaxVariations bounds how many query phrasings the retriever generates.
func WithMaxVariations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxVariations = n
		}
	}
}

// WithMinChunksForConfidence sets the chunk count granted full count credit
// when scoring context quality.
func WithMinChunksForConfidence(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MinChunksForConfidence = n
		}
	}
}

// WithMaxPassages caps total passages included in the generation prompt.
func WithMaxPassages(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxPassages = n
		}
	}
}

// WithEnhanceBelowConfidence sets the confidence below which answers get the
// empathetic rewrite pass.
func WithEnhanceBelowConfidence(c float32) Option {
	return func(cfg *Config) {
		if c >= 0 && c <= 1 {
			cfg.EnhanceBelowConfidence = c
		}
	}
}

// WithIntentPrompt overrides the system prompt used for intent analysis.
func WithIntentPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.IntentPrompt = prompt
		}
	}
}

// WithFallbackContact names the human channel suggested when the knowledge
// base has nothing relevant.
func WithFallbackContact(contact string) Option {
	return func(cfg *Config) {
		if contact != "" {
			cfg.FallbackContact = contact
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Name:                   "hr-rag",
		TopK:                   10,
		Thresholds:             []float32{0.5, 0.3, 0.2},
		HitsPerSearch:          5,
		MaxVariations:          4,
		MinChunksForConfidence: 1,
		MaxChunksPerArticle:    3,
		MaxPassageChars:        800,
		MaxPassages:            8,
		EnhanceBelowConfidence: 0.6,
		IntentPrompt: `You analyse questions asked of an HR assistant. Return compact JSON only:
{"main_topic":"benefits|leave|policies|performance|recruitment|compensation|training|general","key_terms":["..."],"search_keywords":["..."],"intent":"informational|procedural|support"}
Rules:
- "key_terms" holds the significant words of the question in order.
- "search_keywords" holds alternative phrasings useful for document search.
- No prose, no code fences.`,
		FallbackContact: "your HR team",
	}
}

func applyOptions(cfg *Config, opts []Option) *Config {
	if cfg == nil {
		cfg = defaultConfig()
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
