// Package mongo implements repository.UserRepository on MongoDB.
//
// Users live in a single "users" collection with a unique index on
// externalId. The document shape matches the records written by earlier
// releases of the service, so an existing database can be reused as is.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDatabase = "commentdesk"
	usersCollection = "users"
	connectTimeout  = 10 * time.Second
)

// Store holds the client and the users collection. A *mongo.Client is a
// connection pool and safe for concurrent use.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

// New connects to uri, verifies the connection and ensures the unique index
// on externalId exists. An empty database name selects DefaultDatabase.
func New(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: creating indexes: %w", err)
	}

	return s, nil
}

// Close disconnects the client, waiting for in-flight operations.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "externalId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("externalId_unique"),
	})
	return err
}
