// Package store provides history.Store implementations over different
// backends.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adanianlabs/hrassist/history"
)

// InMemoryStore keeps exchanges in memory, suitable for tests and single
// process deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]*history.Exchange
}

var _ history.Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]*history.Exchange)}
}

// Append records an exchange.
func (s *InMemoryStore) Append(ctx context.Context, exchange *history.Exchange) error {
	if exchange == nil {
		return fmt.Errorf("exchange cannot be nil")
	}
	if exchange.SessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if exchange.ID == "" {
		exchange.ID = history.GenerateExchangeID()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *exchange
	s.sessions[exchange.SessionID] = append(s.sessions[exchange.SessionID], &copied)
	return nil
}

// Recent returns up to limit exchanges for the session, newest first.
func (s *InMemoryStore) Recent(ctx context.Context, sessionID string, limit int) ([]*history.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges := s.sessions[sessionID]
	if limit <= 0 || limit > len(exchanges) {
		limit = len(exchanges)
	}

	result := make([]*history.Exchange, 0, limit)
	for i := len(exchanges) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *exchanges[i]
		result = append(result, &copied)
	}
	return result, nil
}

// ClearSession removes all exchanges for a session.
func (s *InMemoryStore) ClearSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
