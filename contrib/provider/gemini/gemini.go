package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/adanianlabs/hrassist/llm"
	"github.com/adanianlabs/hrassist/message"
)

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	TopP        float32
	TopK        int32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "gemini-2.5-flash",
		MaxTokens:   1000,
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	}
}

// Provider implements the llm.Client interface for Google Gemini using the
// official SDK.
type Provider struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini provider.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Provider{
		config: config,
		client: client,
	}, nil
}

// Generate implements llm.Client.
func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("generate request cannot be nil")
	}

	model := p.client.GenerativeModel(p.config.Model)
	model.GenerationConfig = p.generationConfig(req)

	var systemParts []string
	var userParts []genai.Part
	for _, msg := range req.Messages {
		switch msg.Role {
		case message.RoleSystem:
			systemParts = append(systemParts, msg.Text())
		default:
			userParts = append(userParts, genai.Text(msg.Text()))
		}
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(systemParts, "\n"))},
		}
	}
	if len(userParts) == 0 {
		return nil, fmt.Errorf("generate request contains no user content")
	}

	resp, err := model.GenerateContent(ctx, userParts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	return &llm.Response{Message: message.NewMessage(message.RoleAssistant, text)}, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) generationConfig(req *llm.Request) genai.GenerationConfig {
	temperature := p.config.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := p.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = int32(req.MaxTokens)
	}
	topP := p.config.TopP
	if req.TopP > 0 {
		topP = req.TopP
	}
	topK := p.config.TopK
	if req.TopK > 0 {
		topK = int32(req.TopK)
	}

	cfg := genai.GenerationConfig{}
	cfg.SetTemperature(temperature)
	if maxTokens > 0 {
		cfg.SetMaxOutputTokens(maxTokens)
	}
	if topP > 0 {
		cfg.SetTopP(topP)
	}
	if topK > 0 {
		cfg.SetTopK(topK)
	}
	return cfg
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
