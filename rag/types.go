package rag

import (
	"time"

	"github.com/adanianlabs/hrassist/kb"
)

// Chunk re-exports the knowledge-base match type consumed by the pipeline.
type Chunk = kb.Match

// Query and data type tags carried on every answer envelope.
const (
	QueryTypeData     = "data_query"
	QueryTypeDocument = "document_query"
	QueryTypeError    = "error"
)

// Topic vocabulary for intent analysis.
const (
	TopicBenefits     = "benefits"
	TopicLeave        = "leave"
	TopicPolicies     = "policies"
	TopicPerformance  = "performance"
	TopicRecruitment  = "recruitment"
	TopicCompensation = "compensation"
	TopicTraining     = "training"
	TopicGeneral      = "general"
)

// Intent categories for intent analysis.
const (
	IntentInformational = "informational"
	IntentProcedural    = "procedural"
	IntentSupport       = "support"
)

// Coverage levels derived from total retrieved word count.
const (
	CoverageNone          = "none"
	CoverageLimited       = "limited"
	CoverageAdequate      = "adequate"
	CoverageComprehensive = "comprehensive"
)

// Recommendation tiers derived from the confidence score.
const (
	RecommendationInsufficient = "insufficient_context"
	RecommendationLow          = "low_confidence"
	RecommendationModerate     = "moderate_confidence"
	RecommendationHigh         = "high_confidence"
)

// QueryAnalysis is the structured interpretation of a raw question emitted by
// the intent analyzer. It is always populated; a deterministic fallback fills
// it in when the model output cannot be used.
type QueryAnalysis struct {
	PrimaryTopic   string   `json:"main_topic"`
	KeyTerms       []string `json:"key_terms"`
	SearchKeywords []string `json:"search_keywords"`
	Intent         string   `json:"intent"`
}

// ContextQuality judges how well a set of retrieved chunks supports answering
// a question. Computed once per query and immutable afterwards.
type ContextQuality struct {
	Confidence      float32 `json:"confidence"`
	Coverage        string  `json:"coverage"`
	SourceDiversity int     `json:"source_diversity"`
	Recommendation  string  `json:"recommendation"`
	AvgSimilarity   float32 `json:"avg_similarity"`
	TotalWords      int     `json:"total_words"`
}

// Answer is the uniform envelope returned to every caller regardless of the
// path taken. Failure paths populate it instead of returning an error.
type Answer struct {
	Answer          string    `json:"answer"`
	ConfidenceLevel string    `json:"confidence_level"`
	ConfidenceScore float32   `json:"confidence_score"`
	SourcesUsed     int       `json:"sources_used"`
	Coverage        string    `json:"coverage"`
	QueryType       string    `json:"query_type"`
	DataType        string    `json:"data_type,omitempty"`
	Chunks          []Chunk   `json:"chunks,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// confidenceLabel maps a recommendation tier to its user-facing label.
func confidenceLabel(recommendation string) string {
	switch recommendation {
	case RecommendationHigh:
		return "High Confidence"
	case RecommendationModerate:
		return "Moderate Confidence"
	case RecommendationLow:
		return "Low Confidence"
	case RecommendationInsufficient:
		return "Limited Information"
	default:
		return "Unknown"
	}
}
