package router

import "testing"

func TestRouteExplicitDataRequests(t *testing.T) {
	cases := []struct {
		question string
		dataType string
	}{
		{"Show me current headcount breakdown", DataHeadcount},
		{"How many employees do we have?", DataHeadcount},
		{"What is our attrition rate this year?", DataAttrition},
		{"Any probation alerts I should know about?", DataProbation},
		{"Show me appraisal completion for Q2", DataAppraisals},
		{"List expiring contracts", DataContracts},
		{"Give me the HR dashboard summary", DataDashboard},
	}

	for _, tc := range cases {
		decision := Route(tc.question)
		if decision.QueryType != "data_query" {
			t.Errorf("Route(%q) query type = %q, want data_query", tc.question, decision.QueryType)
		}
		if decision.DataType != tc.dataType {
			t.Errorf("Route(%q) data type = %q, want %q", tc.question, decision.DataType, tc.dataType)
		}
		if decision.Confidence != ConfidenceHigh {
			t.Errorf("Route(%q) confidence = %q, want high", tc.question, decision.Confidence)
		}
		if decision.Reason != ReasonExplicitDataRequest {
			t.Errorf("Route(%q) reason = %q, want explicit_data_request", tc.question, decision.Reason)
		}
		if decision.MatchedPattern == "" {
			t.Errorf("Route(%q) matched pattern is empty", tc.question)
		}
	}
}

func TestRoutePolicyQuestions(t *testing.T) {
	cases := []string{
		"What is the company's leave policy?",
		"How do I submit an expense claim?",
		"What are the onboarding procedures?",
		"How does the appraisal process work?",
	}

	for _, question := range cases {
		decision := Route(question)
		if decision.QueryType != "document_query" {
			t.Errorf("Route(%q) query type = %q, want document_query", question, decision.QueryType)
		}
		if decision.DataType != DataPolicy {
			t.Errorf("Route(%q) data type = %q, want policy", question, decision.DataType)
		}
		if decision.Confidence != ConfidenceHigh {
			t.Errorf("Route(%q) confidence = %q, want high", question, decision.Confidence)
		}
	}
}

// A "how do I" question mentioning a metric keyword must still route to
// documents: the policy tier outranks the keyword fallback.
func TestRoutePolicyBeatsKeywordFallback(t *testing.T) {
	decision := Route("How do I check the current status of probation reviews?")
	if decision.QueryType != "document_query" {
		t.Fatalf("query type = %q, want document_query", decision.QueryType)
	}
	if decision.DataType != DataPolicy {
		t.Fatalf("data type = %q, want policy", decision.DataType)
	}
	if decision.Reason != ReasonPolicyProcedure {
		t.Fatalf("reason = %q, want policy_procedure_request", decision.Reason)
	}
}

func TestRouteInformationalQuestions(t *testing.T) {
	decision := Route("Tell me about the wellness program")
	if decision.QueryType != "document_query" || decision.DataType != DataGeneral {
		t.Fatalf("got %q/%q, want document_query/general", decision.QueryType, decision.DataType)
	}
	if decision.Confidence != ConfidenceMedium {
		t.Fatalf("confidence = %q, want medium", decision.Confidence)
	}
	if decision.Reason != ReasonInformational {
		t.Fatalf("reason = %q, want informational_request", decision.Reason)
	}
}

func TestRouteKeywordFallback(t *testing.T) {
	decision := Route("headcount please, totals only")
	if decision.QueryType != "data_query" {
		t.Fatalf("query type = %q, want data_query", decision.QueryType)
	}
	if decision.DataType != DataHeadcount {
		t.Fatalf("data type = %q, want headcount", decision.DataType)
	}
	if decision.Confidence != ConfidenceLow {
		t.Fatalf("confidence = %q, want low", decision.Confidence)
	}
	if decision.MatchedPattern != "keyword:headcount" {
		t.Fatalf("matched pattern = %q, want keyword:headcount", decision.MatchedPattern)
	}
}

// A metric keyword without any request indicator stays a document query.
func TestRouteKeywordNeedsIndicator(t *testing.T) {
	decision := Route("attrition worries me")
	if decision.QueryType != "document_query" {
		t.Fatalf("query type = %q, want document_query", decision.QueryType)
	}
	if decision.Reason != ReasonDefaultFallback {
		t.Fatalf("reason = %q, want default_fallback", decision.Reason)
	}
}

func TestRouteDefaultFallback(t *testing.T) {
	decision := Route("something entirely unrelated")
	if decision.QueryType != "document_query" || decision.DataType != DataGeneral {
		t.Fatalf("got %q/%q, want document_query/general", decision.QueryType, decision.DataType)
	}
	if decision.Reason != ReasonDefaultFallback {
		t.Fatalf("reason = %q, want default_fallback", decision.Reason)
	}
	if decision.MatchedPattern != "" {
		t.Fatalf("matched pattern = %q, want empty", decision.MatchedPattern)
	}
}

func TestRouteIsCaseInsensitive(t *testing.T) {
	lower := Route("show me current headcount")
	upper := Route("SHOW ME CURRENT HEADCOUNT")
	if lower != upper {
		t.Fatalf("case variants diverged: %#v vs %#v", lower, upper)
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	question := "What is our attrition rate?"
	first := Route(question)
	for i := 0; i < 10; i++ {
		if got := Route(question); got != first {
			t.Fatalf("run %d diverged: %#v vs %#v", i, got, first)
		}
	}
}
