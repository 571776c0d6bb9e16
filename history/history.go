// Package history records question/answer exchanges per conversation session
// so callers can show prior context and audit what the assistant said.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Exchange is one question/answer round trip.
type Exchange struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	QueryType       string    `json:"query_type"`
	DataType        string    `json:"data_type,omitempty"`
	ConfidenceScore float32   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

type idGenerator struct {
	mu      sync.Mutex
	lastTs  int64
	counter int64
}

var defaultIDGenerator = &idGenerator{}

// GenerateExchangeID returns a unique identifier for an exchange.
func GenerateExchangeID() string {
	return defaultIDGenerator.Generate()
}

func (g *idGenerator) Generate() string {
	now := time.Now().UnixNano()

	g.mu.Lock()
	if now > g.lastTs {
		g.lastTs = now
		g.counter = 0
		g.mu.Unlock()
		return fmt.Sprintf("ex_%d", now)
	}
	g.counter++
	counter := g.counter
	g.mu.Unlock()

	return fmt.Sprintf("ex_%d_%d", now, counter)
}

// Store persists exchanges. Implementations are safe for concurrent use.
type Store interface {
	// Append records an exchange, assigning an ID and timestamp when absent.
	Append(ctx context.Context, exchange *Exchange) error

	// Recent returns up to limit exchanges for the session, newest first.
	Recent(ctx context.Context, sessionID string, limit int) ([]*Exchange, error)

	// ClearSession removes all exchanges for one session.
	ClearSession(ctx context.Context, sessionID string) error

	// Close releases underlying resources.
	Close() error
}
