package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanianlabs/hrassist/history"
)

// MongoStore implements history.Store using MongoDB.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ history.Store = (*MongoStore)(nil)

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns default MongoDB configuration.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "hrassist",
		Collection: "exchanges",
	}
}

type mongoExchange struct {
	ID              string    `bson:"_id"`
	SessionID       string    `bson:"session_id"`
	Question        string    `bson:"question"`
	Answer          string    `bson:"answer"`
	QueryType       string    `bson:"query_type"`
	DataType        string    `bson:"data_type,omitempty"`
	ConfidenceScore float32   `bson:"confidence_score"`
	CreatedAt       time.Time `bson:"created_at"`
}

// NewMongoStore creates a MongoDB-backed history store.
func NewMongoStore(config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}
	if err := store.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	}
	_, err := s.collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

// Append inserts an exchange document.
func (s *MongoStore) Append(ctx context.Context, exchange *history.Exchange) error {
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

	doc := mongoExchange{
		ID:              exchange.ID,
		SessionID:       exchange.SessionID,
		Question:        exchange.Question,
		Answer:          exchange.Answer,
		QueryType:       exchange.QueryType,
		DataType:        exchange.DataType,
		ConfidenceScore: exchange.ConfidenceScore,
		CreatedAt:       exchange.CreatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges for the session, newest first.
func (s *MongoStore) Recent(ctx context.Context, sessionID string, limit int) ([]*history.Exchange, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, bson.M{"session_id": sessionID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query session history: %w", err)
	}
	defer cursor.Close(ctx)

	var exchanges []*history.Exchange
	for cursor.Next(ctx) {
		var doc mongoExchange
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode exchange: %w", err)
		}
		exchanges = append(exchanges, &history.Exchange{
			ID:              doc.ID,
			SessionID:       doc.SessionID,
			Question:        doc.Question,
			Answer:          doc.Answer,
			QueryType:       doc.QueryType,
			DataType:        doc.DataType,
			ConfidenceScore: doc.ConfidenceScore,
			CreatedAt:       doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchanges: %w", err)
	}
	return exchanges, nil
}

// ClearSession removes all exchanges for a session.
func (s *MongoStore) ClearSession(ctx context.Context, sessionID string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
