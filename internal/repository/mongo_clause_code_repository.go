package repository

import (
	"context"
	"fmt"
	"time"

	"twse-announcements/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type clauseCodeDocument struct {
	Code        string    `bson:"code"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
}

// NewMongoClauseCodeRepository creates a clause-code repository over a
// document collection.
func NewMongoClauseCodeRepository(coll *mongo.Collection) ClauseCodeRepository {
	return &mongoClauseCodeRepository{coll: coll}
}

type mongoClauseCodeRepository struct {
	coll *mongo.Collection
}

// EnsureClauseCodeIndexes creates the unique code index.
func EnsureClauseCodeIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create clause code index: %w", err)
	}
	return nil
}

func (r *mongoClauseCodeRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

func (r *mongoClauseCodeRepository) CreateBatch(ctx context.Context, codes []entity.ClauseCode) error {
	if len(codes) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(codes))
	for i, c := range codes {
		created := c.CreatedAt
		if created.IsZero() {
			created = now
		}
		docs[i] = clauseCodeDocument{Code: c.Code, Description: c.Description, CreatedAt: created}
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *mongoClauseCodeRepository) FindAll(ctx context.Context) ([]entity.ClauseCode, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []clauseCodeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.ClauseCode, len(docs))
	for i, d := range docs {
		out[i] = entity.ClauseCode{Code: d.Code, Description: d.Description, CreatedAt: d.CreatedAt}
	}
	return out, nil
}

func (r *mongoClauseCodeRepository) DeleteAll(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{})
	return err
}
