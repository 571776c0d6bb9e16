package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/adanianlabs/hrassist/kb"
)

type retriever struct {
	searcher      kb.Searcher
	thresholds    []float32
	hitsPerSearch int
	maxVariations int
	logger        *slog.Logger
}

func newRetriever(searcher kb.Searcher, cfg *Config, logger *slog.Logger) *retriever {
	return &retriever{
		searcher:      searcher,
		thresholds:    cfg.Thresholds,
		hitsPerSearch: cfg.HitsPerSearch,
		maxVariations: cfg.MaxVariations,
		logger:        logger,
	}
}

// Retrieve runs progressive multi-variation search: thresholds are tried in
// descending strictness and widening stops at the first tier that yields any
// hits. A failed search on one variation is skipped, not propagated.
func (r *retriever) Retrieve(ctx context.Context, question string, analysis *QueryAnalysis, topK int) ([]Chunk, error) {
	if r.searcher == nil {
		return nil, fmt.Errorf("searcher is not configured")
	}
	if topK <= 0 {
		topK = 10
	}

	variations := r.searchVariations(question, analysis)
	r.logger.Debug("search variations generated", "count", len(variations))

	var accumulated []Chunk
	for _, threshold := range r.thresholds {
		for _, variation := range variations {
			if len(accumulated) >= topK {
				break
			}
			hits, err := r.searcher.SearchChunks(ctx, variation, threshold, r.hitsPerSearch)
			if err != nil {
				r.logger.Warn("search variation failed",
					"variation", variation,
					"threshold", threshold,
					"error", err,
				)
				continue
			}
			accumulated = append(accumulated, hits...)
		}
		if len(accumulated) > 0 {
			r.logger.Debug("retrieval settled", "threshold", threshold, "hits", len(accumulated))
			break
		}
	}

	accumulated = dedupeChunks(accumulated)
	sort.SliceStable(accumulated, func(i, j int) bool {
		return accumulated[i].Similarity > accumulated[j].Similarity
	})
	if len(accumulated) > topK {
		accumulated = accumulated[:topK]
	}
	return accumulated, nil
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"has": true, "have": true, "was": true, "what": true, "when": true,
	"where": true, "which": true, "with": true, "how": true, "who": true,
	"why": true, "our": true, "your": true, "does": true, "about": true,
	"this": true, "that": true, "there": true, "their": true, "them": true,
	"from": true, "into": true, "will": true, "would": true, "should": true,
	"could": true, "please": true,
}

func meaningfulWords(text string) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		words = append(words, word)
	}
	return words
}

// searchVariations expands the question into alternative phrasings to improve
// recall against formal policy language. Capped to bound external call volume.
func (r *retriever) searchVariations(question string, analysis *QueryAnalysis) []string {
	candidates := []string{question}

	if analysis != nil {
		if topic := strings.TrimSpace(analysis.PrimaryTopic); topic != "" && topic != TopicGeneral {
			candidates = append(candidates,
				topic,
				topic+" policy",
				"employee "+topic,
			)
		}

		var terms []string
		for _, term := range analysis.KeyTerms {
			term = strings.TrimSpace(strings.ToLower(term))
			if len(term) <= 2 || stopWords[term] {
				continue
			}
			terms = append(terms, term)
		}
		for i := 0; i < len(terms) && i < 2; i++ {
			candidates = append(candidates, terms[i])
		}
		if len(terms) >= 3 {
			candidates = append(candidates, strings.Join(terms[:3], " "))
		}
	}

	words := meaningfulWords(question)
	if len(words) > 2 {
		candidates = append(candidates, strings.Join(words[:3], " "))
	}
	if len(words) > 3 {
		candidates = append(candidates, strings.Join(words[len(words)-3:], " "))
	}

	seen := make(map[string]bool, len(candidates))
	var variations []string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if len(candidate) < 3 {
			continue
		}
		key := strings.ToLower(candidate)
		if seen[key] {
			continue
		}
		seen[key] = true
		variations = append(variations, candidate)
		if len(variations) >= r.maxVariations {
			break
		}
	}
	return variations
}
