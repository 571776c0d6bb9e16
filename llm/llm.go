package llm

import (
	"context"

	"github.com/adanianlabs/hrassist/message"
)

// Request bundles inputs for a single model invocation. Temperature and
// MaxTokens apply to this request only; zero values defer to the provider's
// configured defaults.
type Request struct {
	Messages    []*message.Message
	Temperature float32
	MaxTokens   int
	TopP        float32
	TopK        int
}

// Response captures the model reply.
type Response struct {
	Message *message.Message
}

// Client defines the interface for text-generation providers.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Prompt is a convenience for single-prompt requests.
func Prompt(text string) []*message.Message {
	return []*message.Message{message.NewMessage(message.RoleUser, text)}
}

// Text extracts the reply text from a response, tolerating nil.
func (r *Response) Text() string {
	if r == nil || r.Message == nil {
		return ""
	}
	return r.Message.Text()
}
