package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adanianlabs/hrassist/analytics"
	"github.com/adanianlabs/hrassist/pkg/logging"
	"github.com/adanianlabs/hrassist/rag"
)

// Answerer is the document-query side of the router, satisfied by rag.Engine.
type Answerer interface {
	Ask(ctx context.Context, question string, opts ...rag.AskOption) *rag.Answer
}

// Router dispatches questions to the analytics service or the answer engine
// based on the classification in Route.
type Router struct {
	engine    Answerer
	analytics analytics.Service
	logger    *slog.Logger
}

// New creates a router over both backends.
func New(engine Answerer, svc analytics.Service) (*Router, error) {
	if engine == nil {
		return nil, fmt.Errorf("answer engine is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("analytics service is required")
	}
	return &Router{
		engine:    engine,
		analytics: svc,
		logger:    logging.WithComponent("query_router"),
	}, nil
}

// Ask routes a question and returns the uniform answer envelope. It never
// returns an error; every failure path is folded into the envelope.
func (r *Router) Ask(ctx context.Context, question string, opts ...rag.AskOption) (answer *rag.Answer) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("router panicked", "panic", rec)
			answer = errorAnswer(fmt.Sprintf("%v", rec))
		}
	}()

	decision := Route(question)
	r.logger.Info("question routed",
		"query_type", decision.QueryType,
		"data_type", decision.DataType,
		"confidence", decision.Confidence,
		"reason", decision.Reason,
	)

	if decision.QueryType == rag.QueryTypeData {
		answer = r.handleDataQuery(ctx, decision.DataType)
		answer.DataType = decision.DataType
		return answer
	}

	answer = r.engine.Ask(ctx, question, opts...)
	answer.DataType = decision.DataType
	return answer
}

func (r *Router) handleDataQuery(ctx context.Context, dataType string) *rag.Answer {
	var (
		text string
		err  error
	)
	switch dataType {
	case DataHeadcount:
		var report *analytics.HeadcountReport
		if report, err = r.analytics.CurrentHeadcount(ctx); err == nil {
			text = formatHeadcount(report)
		}
	case DataAttrition:
		var report *analytics.AttritionReport
		if report, err = r.analytics.Attrition(ctx, 12); err == nil {
			text = formatAttrition(report)
		}
	case DataProbation:
		var report *analytics.ProbationReport
		if report, err = r.analytics.ProbationAlerts(ctx); err == nil {
			text = formatProbation(report)
		}
	case DataAppraisals:
		var report *analytics.AppraisalReport
		if report, err = r.analytics.AppraisalStatus(ctx); err == nil {
			text = formatAppraisals(report)
		}
	case DataContracts:
		var report *analytics.ContractReport
		if report, err = r.analytics.ContractExpiryAlerts(ctx, 30); err == nil {
			text = formatContracts(report)
		}
	case DataDashboard:
		var report *analytics.DashboardSummary
		if report, err = r.analytics.DashboardSummary(ctx); err == nil {
			text = formatDashboard(report)
		}
	default:
		return &rag.Answer{
			Answer:          fmt.Sprintf("I understand you're asking about %s, but I'm not sure how to handle that specific data request yet. Could you try rephrasing your question?", dataType),
			ConfidenceLevel: "Unsure",
			ConfidenceScore: 0.3,
			QueryType:       rag.QueryTypeData,
			GeneratedAt:     time.Now(),
		}
	}

	if err != nil {
		r.logger.Error("analytics query failed", "data_type", dataType, "error", err)
		return &rag.Answer{
			Answer:          fmt.Sprintf("I encountered an error while retrieving that information: %v. Please try again or contact HR support.", err),
			ConfidenceLevel: "Error",
			ConfidenceScore: 0,
			QueryType:       rag.QueryTypeData,
			GeneratedAt:     time.Now(),
		}
	}

	return &rag.Answer{
		Answer:          text,
		ConfidenceLevel: "High Confidence",
		ConfidenceScore: 0.95,
		QueryType:       rag.QueryTypeData,
		GeneratedAt:     time.Now(),
	}
}

func errorAnswer(detail string) *rag.Answer {
	return &rag.Answer{
		Answer:          fmt.Sprintf("I encountered an error while processing your question: %s. Please try again.", detail),
		ConfidenceLevel: "Error",
		ConfidenceScore: 0,
		QueryType:       rag.QueryTypeError,
		GeneratedAt:     time.Now(),
	}
}
