// Package router classifies free-text questions as structured data requests
// or document lookups, and dispatches them to the analytics service or the
// answer engine accordingly.
package router

import (
	"regexp"
	"strings"
)

// Data types a classified question can target.
const (
	DataHeadcount  = "headcount"
	DataAttrition  = "attrition"
	DataProbation  = "probation"
	DataAppraisals = "appraisals"
	DataContracts  = "contracts"
	DataDashboard  = "dashboard"
	DataPolicy     = "policy"
	DataGeneral    = "general"
)

// Confidence tiers attached to routing decisions.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Reasons recorded on routing decisions.
const (
	ReasonExplicitDataRequest = "explicit_data_request"
	ReasonPolicyProcedure     = "policy_procedure_request"
	ReasonInformational       = "informational_request"
	ReasonKeywordFallback     = "keyword_fallback"
	ReasonDefaultFallback     = "default_fallback"
)

// Decision is the output of intent classification.
type Decision struct {
	QueryType      string `json:"query_type"` // data_query or document_query
	DataType       string `json:"data_type"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
	Confidence     string `json:"confidence"`
	Reason         string `json:"reason"`
}

type patternGroup struct {
	dataType string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(expr)
	}
	return compiled
}

// Explicit data-request phrasings, checked first. Groups are ordered so
// repeated runs agree.
var explicitDataPatterns = []patternGroup{
	{DataHeadcount, compileAll(
		`show me.*headcount`, `current headcount`, `how many employees do we have`,
		`employee count`, `workforce size`, `staff numbers`, `total employees`,
	)},
	{DataAttrition, compileAll(
		`attrition rate`, `turnover rate`, `show me.*attrition`,
		`what is our attrition`, `departure rate`,
	)},
	{DataProbation, compileAll(
		`probation alerts`, `probation status`, `show me.*probation`,
		`upcoming probation`, `probation review alerts`,
	)},
	{DataAppraisals, compileAll(
		`appraisal completion`, `appraisal status`, `show me.*appraisal`,
		`performance review completion`, `appraisal progress`,
	)},
	{DataContracts, compileAll(
		`contract expiry`, `expiring contracts`, `contract alerts`,
		`show me.*contract`, `contract renewal`,
	)},
	{DataDashboard, compileAll(
		`dashboard summary`, `hr summary`, `show me.*dashboard`,
		`hr dashboard`, `give me.*summary`,
	)},
}

// Policy and procedure phrasings. Checked before the keyword fallback so a
// "how do I ..." question mentioning a metric word still routes to documents.
var policyPatterns = compileAll(
	`procedures?`, `process`, `how do i`, `how to`, `what is the policy`,
	`what is the.*policy`, `what are the.*procedures`, `guidelines`, `rules`, `requirements`,
	`how does.*work`, `what should i do`,
)

var infoPatterns = compileAll(
	`what is`, `explain`, `tell me about`, `information about`,
	`details about`, `help with`,
)

var dataKeywords = []string{DataHeadcount, DataAttrition, DataProbation, DataContracts, DataDashboard}

var requestIndicators = []string{"show", "current", "status", "how many", "total"}

// Route classifies a question. It is a pure function of the lower-cased
// question text: no model call, no side effects, identical output for
// identical input.
func Route(question string) Decision {
	lower := strings.ToLower(question)

	for _, group := range explicitDataPatterns {
		for _, pattern := range group.patterns {
			if pattern.MatchString(lower) {
				return Decision{
					QueryType:      "data_query",
					DataType:       group.dataType,
					MatchedPattern: pattern.String(),
					Confidence:     ConfidenceHigh,
					Reason:         ReasonExplicitDataRequest,
				}
			}
		}
	}

	for _, pattern := range policyPatterns {
		if pattern.MatchString(lower) {
			return Decision{
				QueryType:      "document_query",
				DataType:       DataPolicy,
				MatchedPattern: pattern.String(),
				Confidence:     ConfidenceHigh,
				Reason:         ReasonPolicyProcedure,
			}
		}
	}

	for _, pattern := range infoPatterns {
		if pattern.MatchString(lower) {
			return Decision{
				QueryType:      "document_query",
				DataType:       DataGeneral,
				MatchedPattern: pattern.String(),
				Confidence:     ConfidenceMedium,
				Reason:         ReasonInformational,
			}
		}
	}

	hasIndicator := false
	for _, indicator := range requestIndicators {
		if strings.Contains(lower, indicator) {
			hasIndicator = true
			break
		}
	}
	if hasIndicator {
		for _, keyword := range dataKeywords {
			if strings.Contains(lower, keyword) {
				return Decision{
					QueryType:      "data_query",
					DataType:       keyword,
					MatchedPattern: "keyword:" + keyword,
					Confidence:     ConfidenceLow,
					Reason:         ReasonKeywordFallback,
				}
			}
		}
	}

	return Decision{
		QueryType:  "document_query",
		DataType:   DataGeneral,
		Confidence: ConfidenceMedium,
		Reason:     ReasonDefaultFallback,
	}
}
