package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docuchunk/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ storage.ChunkStore = (*ChunkRepo)(nil)

type chunkDocument struct {
	ID         string         `bson:"_id"`
	ProjectRef string         `bson:"project_ref"`
	FileID     string         `bson:"file_id"`
	Order      int            `bson:"chunk_order"`
	Seq        int64          `bson:"seq"`
	Text       string         `bson:"text"`
	Metadata   map[string]any `bson:"metadata"`
	CreatedAt  time.Time      `bson:"created_at"`
}

// ChunkRepo stores chunks in the "chunks" collection. Multi-document
// transactions need a replica set, so it does not implement
// storage.ChunkReplacer; callers serialize resets with a project lock instead.
type ChunkRepo struct {
	store *Store
	coll  *mongo.Collection
}

// InsertMany inserts the batch with ordered semantics: on failure nothing
// after the failing document is written, and the documents before it stay.
// The returned count is the number of documents persisted, also on error.
func (r *ChunkRepo) InsertMany(ctx context.Context, chunks []*storage.ChunkRecord) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	next := make(map[string]int64)
	now := time.Now().UTC()
	docs := make([]any, 0, len(chunks))
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		metadata := c.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		seq, ok := next[c.ProjectRef]
		if !ok {
			var err error
			if seq, err = r.maxSeq(ctx, c.ProjectRef); err != nil {
				return 0, err
			}
		}
		seq++
		next[c.ProjectRef] = seq
		c.Seq = seq

		docs = append(docs, chunkDocument{
			ID:         c.ID,
			ProjectRef: c.ProjectRef,
			FileID:     c.FileID,
			Order:      c.Order,
			Seq:        c.Seq,
			Text:       c.Text,
			Metadata:   metadata,
			CreatedAt:  c.CreatedAt,
		})
	}

	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return persistedBefore(err, len(docs)), fmt.Errorf("failed to insert chunks: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// persistedBefore reports how many documents of an ordered insert of total
// documents were written when it failed with err. InsertManyResult lists every
// attempted ID, so the count comes from the index of the first write error.
// Without write errors the outcome is unknown and 0 is reported.
func persistedBefore(err error, total int) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return 0
	}
	if len(bwe.WriteErrors) == 0 {
		if bwe.WriteConcernError != nil {
			// Every write was applied; only the acknowledgement level failed.
			return total
		}
		return 0
	}

	first := total
	for _, we := range bwe.WriteErrors {
		if we.Index < first {
			first = we.Index
		}
	}
	return first
}

// maxSeq returns the highest insertion sequence stored for the project, or 0.
func (r *ChunkRepo) maxSeq(ctx context.Context, projectRef string) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetProjection(bson.M{"seq": 1})

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.coll.FindOne(ctx, bson.M{"project_ref": projectRef}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read chunk sequence: %w", err)
	}
	return doc.Seq, nil
}

// DeleteByProject removes every chunk of the project.
func (r *ChunkRepo) DeleteByProject(ctx context.Context, projectRef string) (int, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"project_ref": projectRef})
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks by project: %w", err)
	}
	return int(res.DeletedCount), nil
}

// ListByProject returns the project's chunks in insertion order.
func (r *ChunkRepo) ListByProject(ctx context.Context, projectRef string) ([]*storage.ChunkRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"project_ref": projectRef}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	chunks := []*storage.ChunkRecord{}
	for cursor.Next(ctx) {
		var doc chunkDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode chunk: %w", err)
		}
		chunks = append(chunks, &storage.ChunkRecord{
			ID:         doc.ID,
			ProjectRef: doc.ProjectRef,
			FileID:     doc.FileID,
			Order:      doc.Order,
			Seq:        doc.Seq,
			Text:       doc.Text,
			Metadata:   doc.Metadata,
			CreatedAt:  doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return chunks, nil
}

// Ping checks the connection.
func (r *ChunkRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
