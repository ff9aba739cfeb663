// Package mongostore keeps projects and chunks in MongoDB. It implements the
// same ProjectStore and ChunkStore interfaces as the SQL repositories.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	projectsCollection = "projects"
	chunksCollection   = "chunks"

	closeTimeout = 5 * time.Second
)

// Store holds the client and the two collections used by the repositories.
type Store struct {
	client   *mongo.Client
	projects *mongo.Collection
	chunks   *mongo.Collection
}

// Connect dials MongoDB, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		projects: db.Collection(projectsCollection),
		chunks:   db.Collection(chunksCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Projects returns a ProjectStore backed by this connection.
func (s *Store) Projects() *ProjectRepo {
	return &ProjectRepo{coll: s.projects}
}

// Chunks returns a ChunkStore backed by this connection.
func (s *Store) Chunks() *ChunkRepo {
	return &ChunkRepo{store: s, coll: s.chunks}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}},
		Options: options.Index().SetName("project_id").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create project index: %w", err)
	}

	_, err = s.chunks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "project_ref", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetName("project_ref_seq").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create chunk index: %w", err)
	}
	return nil
}
