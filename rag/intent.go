package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adanianlabs/hrassist/llm"
	"github.com/adanianlabs/hrassist/message"
)

type intentAnalyzer struct {
	llm    llm.Client
	prompt string
	logger *slog.Logger
}

func newIntentAnalyzer(client llm.Client, cfg *Config, logger *slog.Logger) *intentAnalyzer {
	return &intentAnalyzer{
		llm:    client,
		prompt: cfg.IntentPrompt,
		logger: logger,
	}
}

// Analyze interprets the question. It never fails: when the model call errors
// or produces unusable JSON the deterministic keyword analysis is substituted.
func (a *intentAnalyzer) Analyze(ctx context.Context, question string) *QueryAnalysis {
	analysis, err := a.analyzeWithModel(ctx, question)
	if err != nil {
		a.logger.Warn("intent analysis fell back to keyword heuristics", "error", err)
		return fallbackAnalysis(question)
	}
	return analysis
}

func (a *intentAnalyzer) analyzeWithModel(ctx context.Context, question string) (*QueryAnalysis, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("intent LLM is not configured")
	}

	messages := []*message.Message{
		message.NewMessage(message.RoleSystem, a.prompt),
		message.NewMessage(message.RoleUser, fmt.Sprintf("Question: %s\nReturn JSON only.", question)),
	}
	resp, err := a.llm.Generate(ctx, &llm.Request{
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("intent generation failed: %w", err)
	}
	if resp == nil || resp.Message == nil || strings.TrimSpace(resp.Text()) == "" {
		return nil, fmt.Errorf("intent analysis returned empty response")
	}

	analysis, err := decodeJSON[QueryAnalysis](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("intent output invalid: %w", err)
	}

	if analysis.PrimaryTopic == "" {
		analysis.PrimaryTopic = TopicGeneral
	}
	if analysis.Intent == "" {
		analysis.Intent = IntentInformational
	}
	if len(analysis.SearchKeywords) == 0 {
		analysis.SearchKeywords = []string{question}
	}
	return analysis, nil
}

// fallbackTopics maps each topic to the keywords that signal it. Checked in a
// fixed order so repeated runs agree.
var fallbackTopics = []struct {
	topic    string
	keywords []string
}{
	{TopicCompensation, []string{"salary", "pay", "wage", "compensation", "bonus", "payroll"}},
	{TopicBenefits, []string{"benefit", "insurance", "medical", "pension", "allowance"}},
	{TopicLeave, []string{"leave", "vacation", "holiday", "time off", "sick", "absence"}},
	{TopicPerformance, []string{"performance", "appraisal", "review", "evaluation", "kpi"}},
	{TopicPolicies, []string{"policy", "policies", "procedure", "rule", "guideline"}},
}

func fallbackAnalysis(question string) *QueryAnalysis {
	lower := strings.ToLower(question)

	topic := TopicGeneral
	for _, candidate := range fallbackTopics {
		for _, keyword := range candidate.keywords {
			if strings.Contains(lower, keyword) {
				topic = candidate.topic
				break
			}
		}
		if topic != TopicGeneral {
			break
		}
	}

	terms := strings.Fields(lower)
	if len(terms) > 5 {
		terms = terms[:5]
	}

	keywords := []string{question}
	if topic != TopicGeneral {
		keywords = append(keywords, topic)
	}

	return &QueryAnalysis{
		PrimaryTopic:   topic,
		KeyTerms:       terms,
		SearchKeywords: keywords,
		Intent:         IntentInformational,
	}
}
