// Package mongodb implements storage interfaces using MongoDB
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirosfoundation/go-edifact/internal/storage"
)

// Store implements storage.InterchangeStore using MongoDB
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	interchanges *mongo.Collection
}

// Config holds MongoDB connection settings
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// NewStore creates a new MongoDB store
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		clientOpts.SetConnectTimeout(cfg.Timeout).SetServerSelectionTimeout(cfg.Timeout)
	}

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "interchanges"
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:       client,
		db:           db,
		interchanges: db.Collection(collection),
	}

	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.interchanges.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "control_ref", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recipient", Value: 1}}},
		{Keys: bson.D{{Key: "message_type", Value: 1}}},
		{Keys: bson.D{{Key: "received_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating interchange indexes: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) SaveInterchange(ctx context.Context, ic *storage.Interchange) error {
	if ic.ID == "" {
		ic.ID = uuid.NewString()
	}
	if ic.ReceivedAt.IsZero() {
		ic.ReceivedAt = time.Now()
	}

	_, err := s.interchanges.InsertOne(ctx, ic)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("interchange %s from %s already exists", ic.ControlRef, ic.Sender)
	}
	return err
}

func (s *Store) GetInterchange(ctx context.Context, id string) (*storage.Interchange, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) FindByControlRef(ctx context.Context, sender, controlRef string) (*storage.Interchange, error) {
	return s.findOne(ctx, bson.M{"sender": sender, "control_ref": controlRef})
}

func (s *Store) findOne(ctx context.Context, query bson.M) (*storage.Interchange, error) {
	var ic storage.Interchange
	err := s.interchanges.FindOne(ctx, query).Decode(&ic)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ic, nil
}

func (s *Store) ListInterchanges(ctx context.Context, filter *storage.InterchangeFilter) ([]*storage.Interchange, error) {
	query := bson.M{}
	if filter != nil {
		if filter.Sender != "" {
			query["sender"] = filter.Sender
		}
		if filter.Recipient != "" {
			query["recipient"] = filter.Recipient
		}
		if filter.MessageType != "" {
			query["message_type"] = filter.MessageType
		}
		if filter.Since != nil {
			query["received_at"] = bson.M{"$gte": *filter.Since}
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "received_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			opts.SetLimit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			opts.SetSkip(int64(filter.Offset))
		}
	}

	cursor, err := s.interchanges.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var interchanges []*storage.Interchange
	if err := cursor.All(ctx, &interchanges); err != nil {
		return nil, err
	}
	return interchanges, nil
}
