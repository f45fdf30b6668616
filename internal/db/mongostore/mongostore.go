// Package mongostore keeps evaluation history in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docs-evaluator/internal/domain"
)

// Defaults for database and collection names.
const (
	DefaultDatabase       = "docs_evaluator"
	EvaluationsCollection = "evaluation_history"
	evaluatedAtField      = "evaluated_at"
)

// Collection is the subset of *mongo.Collection the repository uses.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	if logger != nil {
		logger.Info("connected to MongoDB")
	}
	return client, nil
}

// EvaluationRepo implements domain.EvaluationRepository on a MongoDB collection.
type EvaluationRepo struct {
	coll Collection
}

var _ domain.EvaluationRepository = (*EvaluationRepo)(nil)

// NewEvaluationRepo creates a repository over coll.
func NewEvaluationRepo(coll Collection) *EvaluationRepo {
	return &EvaluationRepo{coll: coll}
}

// NewEvaluationRepoFromClient uses the evaluation collection of database.
func NewEvaluationRepoFromClient(client *mongo.Client, database string) *EvaluationRepo {
	if database == "" {
		database = DefaultDatabase
	}
	return NewEvaluationRepo(client.Database(database).Collection(EvaluationsCollection))
}

// Insert stores e, assigning an id when it has none.
func (r *EvaluationRepo) Insert(ctx context.Context, e *domain.Evaluation) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict("evaluation %q already exists", e.ID)
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// ListRecent returns up to limit evaluations, newest first.
func (r *EvaluationRepo) ListRecent(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: evaluatedAtField, Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find evaluations: %w", err)
	}
	var out []domain.Evaluation
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode evaluations: %w", err)
	}
	return out, nil
}
