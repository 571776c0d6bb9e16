package rag

import "strings"

// scoreContext judges how well the retrieved chunks support answering the
// question. The thresholds are deliberately permissive: a weak match gets a
// labelled low-confidence answer rather than an outright refusal, with the
// recommendation tier governing user-facing framing.
func scoreContext(chunks []Chunk, minChunksForConfidence int) ContextQuality {
	if len(chunks) == 0 {
		return ContextQuality{
			Confidence:     0,
			Coverage:       CoverageNone,
			Recommendation: RecommendationInsufficient,
		}
	}
	if minChunksForConfidence <= 0 {
		minChunksForConfidence = 1
	}

	var similaritySum float32
	sources := make(map[string]bool)
	totalWords := 0
	for _, chunk := range chunks {
		similaritySum += chunk.Similarity
		sources[chunk.ArticleTitle] = true
		totalWords += len(strings.Fields(chunk.Content))
	}
	avgSimilarity := similaritySum / float32(len(chunks))
	diversity := len(sources)

	confidence := avgSimilarity*0.5 +
		clamp01(float32(len(chunks))/float32(minChunksForConfidence))*0.3 +
		clamp01(float32(diversity))*0.1 +
		clamp01(float32(totalWords)/300)*0.1
	confidence = clamp01(confidence)

	coverage := CoverageLimited
	switch {
	case totalWords > 600:
		coverage = CoverageComprehensive
	case totalWords > 200:
		coverage = CoverageAdequate
	}

	recommendation := RecommendationInsufficient
	switch {
	case confidence > 0.7:
		recommendation = RecommendationHigh
	case confidence > 0.5:
		recommendation = RecommendationModerate
	case confidence > 0.3:
		recommendation = RecommendationLow
	}

	return ContextQuality{
		Confidence:      confidence,
		Coverage:        coverage,
		SourceDiversity: diversity,
		Recommendation:  recommendation,
		AvgSimilarity:   avgSimilarity,
		TotalWords:      totalWords,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
