package router

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/adanianlabs/hrassist/analytics"
	"github.com/adanianlabs/hrassist/rag"
)

func TestAskDispatchesDataQuery(t *testing.T) {
	engine := &stubEngine{}
	svc := &stubAnalytics{
		headcount: &analytics.HeadcountReport{
			TotalHeadcount: 42,
			ByDepartment:   map[string]int{"Engineering": 30, "People": 12},
			ByRole:         map[string]int{"employee": 40, "manager": 2},
			LastUpdated:    time.Now(),
		},
	}

	r, err := New(engine, svc)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	answer := r.Ask(context.Background(), "Show me current headcount")
	if answer.QueryType != rag.QueryTypeData {
		t.Fatalf("query type = %q, want data_query", answer.QueryType)
	}
	if answer.DataType != DataHeadcount {
		t.Fatalf("data type = %q, want headcount", answer.DataType)
	}
	if answer.ConfidenceScore != 0.95 {
		t.Fatalf("confidence = %v, want 0.95", answer.ConfidenceScore)
	}
	if !strings.Contains(answer.Answer, "42") {
		t.Fatalf("answer missing headcount total: %q", answer.Answer)
	}
	if engine.calls != 0 {
		t.Fatalf("engine called %d times for a data query", engine.calls)
	}
}

func TestAskDispatchesDocumentQuery(t *testing.T) {
	engine := &stubEngine{answer: &rag.Answer{
		Answer:          "Annual leave accrues at 1.75 days per month.",
		ConfidenceLevel: "High Confidence",
		ConfidenceScore: 0.82,
		QueryType:       rag.QueryTypeDocument,
	}}
	r, err := New(engine, &stubAnalytics{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	answer := r.Ask(context.Background(), "What is the company's leave policy?")
	if engine.calls != 1 {
		t.Fatalf("engine called %d times, want 1", engine.calls)
	}
	if answer.QueryType != rag.QueryTypeDocument {
		t.Fatalf("query type = %q, want document_query", answer.QueryType)
	}
	if answer.DataType != DataPolicy {
		t.Fatalf("data type = %q, want policy", answer.DataType)
	}
	if answer.ConfidenceScore != 0.82 {
		t.Fatalf("confidence = %v, want engine's 0.82", answer.ConfidenceScore)
	}
}

func TestAskAnalyticsErrorEnvelope(t *testing.T) {
	svc := &stubAnalytics{err: fmt.Errorf("connection refused")}
	r, err := New(&stubEngine{}, svc)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	answer := r.Ask(context.Background(), "What is our attrition rate?")
	if answer.ConfidenceScore != 0 {
		t.Fatalf("confidence = %v, want 0", answer.ConfidenceScore)
	}
	if answer.ConfidenceLevel != "Error" {
		t.Fatalf("confidence level = %q, want Error", answer.ConfidenceLevel)
	}
	if !strings.Contains(answer.Answer, "connection refused") {
		t.Fatalf("answer does not surface the failure: %q", answer.Answer)
	}
}

func TestAskDashboardAggregates(t *testing.T) {
	svc := &stubAnalytics{dashboard: &analytics.DashboardSummary{
		TotalEmployees:      42,
		AttritionRate:       3.5,
		AppraisalCompletion: 80,
		TotalAlerts:         2,
		LastUpdated:         time.Now(),
	}}
	r, err := New(&stubEngine{}, svc)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	answer := r.Ask(context.Background(), "Give me the HR dashboard summary")
	if answer.DataType != DataDashboard {
		t.Fatalf("data type = %q, want dashboard", answer.DataType)
	}
	if answer.ConfidenceScore != 0.95 {
		t.Fatalf("confidence = %v, want 0.95", answer.ConfidenceScore)
	}
	if !strings.Contains(answer.Answer, "3.5") {
		t.Fatalf("answer missing attrition rate: %q", answer.Answer)
	}
}

func TestAskRecoversFromPanic(t *testing.T) {
	r, err := New(&stubEngine{panicMsg: "boom"}, &stubAnalytics{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	answer := r.Ask(context.Background(), "something entirely unrelated")
	if answer == nil {
		t.Fatal("expected an envelope, got nil")
	}
	if answer.QueryType != rag.QueryTypeError {
		t.Fatalf("query type = %q, want error", answer.QueryType)
	}
	if !strings.Contains(answer.Answer, "boom") {
		t.Fatalf("answer missing panic detail: %q", answer.Answer)
	}
}

func TestNewRequiresBothBackends(t *testing.T) {
	if _, err := New(nil, &stubAnalytics{}); err == nil {
		t.Fatal("expected error for nil engine")
	}
	if _, err := New(&stubEngine{}, nil); err == nil {
		t.Fatal("expected error for nil analytics service")
	}
}

type stubEngine struct {
	answer   *rag.Answer
	panicMsg string
	calls    int
}

func (s *stubEngine) Ask(ctx context.Context, question string, opts ...rag.AskOption) *rag.Answer {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.answer != nil {
		return s.answer
	}
	return &rag.Answer{Answer: "stub", QueryType: rag.QueryTypeDocument, GeneratedAt: time.Now()}
}

type stubAnalytics struct {
	headcount *analytics.HeadcountReport
	dashboard *analytics.DashboardSummary
	err       error
}

func (s *stubAnalytics) CurrentHeadcount(ctx context.Context) (*analytics.HeadcountReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.headcount != nil {
		return s.headcount, nil
	}
	return &analytics.HeadcountReport{LastUpdated: time.Now()}, nil
}

func (s *stubAnalytics) Trends(ctx context.Context, months int) (*analytics.HeadcountTrends, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.HeadcountTrends{PeriodMonths: months, LastUpdated: time.Now()}, nil
}

func (s *stubAnalytics) Attrition(ctx context.Context, periodMonths int) (*analytics.AttritionReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.AttritionReport{PeriodMonths: periodMonths, LastUpdated: time.Now()}, nil
}

func (s *stubAnalytics) ProbationAlerts(ctx context.Context) (*analytics.ProbationReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.ProbationReport{LastUpdated: time.Now()}, nil
}

func (s *stubAnalytics) AppraisalStatus(ctx context.Context) (*analytics.AppraisalReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.AppraisalReport{LastUpdated: time.Now()}, nil
}

func (s *stubAnalytics) ContractExpiryAlerts(ctx context.Context, daysAhead int) (*analytics.ContractReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.ContractReport{AlertPeriodDays: daysAhead, LastUpdated: time.Now()}, nil
}

func (s *stubAnalytics) DashboardSummary(ctx context.Context) (*analytics.DashboardSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.dashboard != nil {
		return s.dashboard, nil
	}
	return &analytics.DashboardSummary{LastUpdated: time.Now()}, nil
}
