package mongostore

import (
	"context"
	"fmt"
	"time"

	"docuchunk/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ storage.ProjectStore = (*ProjectRepo)(nil)

type projectDocument struct {
	ID        string    `bson:"_id"`
	ProjectID string    `bson:"project_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// ProjectRepo stores projects in the "projects" collection.
type ProjectRepo struct {
	coll *mongo.Collection
}

// GetOrCreate upserts the project. Two callers racing on a new identifier can
// both attempt the insert; the unique index rejects one and it retries as a read.
func (r *ProjectRepo) GetOrCreate(ctx context.Context, projectID string) (*storage.ProjectRecord, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	filter := bson.M{"project_id": projectID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        uuid.New().String(),
		"created_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc projectDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	return &storage.ProjectRecord{
		ID:        doc.ID,
		ProjectID: doc.ProjectID,
		CreatedAt: doc.CreatedAt,
	}, nil
}
