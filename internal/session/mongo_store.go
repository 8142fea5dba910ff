package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-dashboard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ClientStorageCollection = "client_storage"

type storageDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoIdentityStore keeps the slot as one document keyed by the slot name.
type MongoIdentityStore struct {
	collection *mongo.Collection
	key        string
}

func NewMongoIdentityStore(db *mongo.Database, key string) *MongoIdentityStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &MongoIdentityStore{
		collection: db.Collection(ClientStorageCollection),
		key:        key,
	}
}

func (s *MongoIdentityStore) Load(ctx context.Context) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var doc storageDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity from mongo: %w", err)
	}
	return decodeIdentity(doc.Value)
}

func (s *MongoIdentityStore) Save(ctx context.Context, user models.User) error {
	value, err := encodeIdentity(user)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	doc := storageDocument{Key: s.key, Value: value, UpdatedAt: time.Now()}
	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write identity to mongo: %w", err)
	}
	return nil
}

func (s *MongoIdentityStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("failed to clear identity in mongo: %w", err)
	}
	return nil
}

func (s *MongoIdentityStore) Name() string { return "mongo" }
