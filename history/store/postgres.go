package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/adanianlabs/hrassist/history"
)

// PostgresStore implements history.Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ history.Store = (*PostgresStore)(nil)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "hrassist",
		SSLMode:  "disable",
	}
}

// NewPostgresStore creates a PostgreSQL-backed history store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_exchange (
		id VARCHAR(255) PRIMARY KEY,
		session_id VARCHAR(255) NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		query_type VARCHAR(32),
		data_type VARCHAR(32),
		confidence_score REAL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_exchange_session ON chat_exchange(session_id, created_at);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Append inserts an exchange row.
func (s *PostgresStore) Append(ctx context.Context, exchange *history.Exchange) error {
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

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO chat_exchange (id, session_id, question, answer, query_type, data_type, confidence_score, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		exchange.ID, exchange.SessionID, exchange.Question, exchange.Answer,
		exchange.QueryType, exchange.DataType, exchange.ConfidenceScore, exchange.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges for the session, newest first.
func (s *PostgresStore) Recent(ctx context.Context, sessionID string, limit int) ([]*history.Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, session_id, question, answer,
	       COALESCE(query_type, ''), COALESCE(data_type, ''),
	       COALESCE(confidence_score, 0), created_at
	FROM chat_exchange
	WHERE session_id = $1
	ORDER BY created_at DESC
	LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session history: %w", err)
	}
	defer rows.Close()

	var exchanges []*history.Exchange
	for rows.Next() {
		var exchange history.Exchange
		if err := rows.Scan(&exchange.ID, &exchange.SessionID, &exchange.Question, &exchange.Answer,
			&exchange.QueryType, &exchange.DataType, &exchange.ConfidenceScore, &exchange.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, &exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchanges: %w", err)
	}
	return exchanges, nil
}

// ClearSession removes all exchanges for a session.
func (s *PostgresStore) ClearSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_exchange WHERE session_id = $1", sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
