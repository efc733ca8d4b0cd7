package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"leadforms/internal/domain"
	"leadforms/internal/metrics"
	apperrors "leadforms/pkg/errors"
)

// LeadsCollection is the MongoDB collection holding leads
const LeadsCollection = "leads"

// MongoLeadRepository stores leads as documents in MongoDB
type MongoLeadRepository struct {
	collection *mongo.Collection
}

// NewMongoLeadRepository creates a new document-backed lead repository
func NewMongoLeadRepository(database *mongo.Database) *MongoLeadRepository {
	return &MongoLeadRepository{collection: database.Collection(LeadsCollection)}
}

// EnsureIndexes creates the index backing FindRecent
func (r *MongoLeadRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create leads index: %w", err)
	}
	return nil
}

// Insert implements LeadRepository
func (r *MongoLeadRepository) Insert(ctx context.Context, lead *domain.Lead) error {
	start := time.Now()
	lead.AssignIdentity(start)

	_, err := r.collection.InsertOne(ctx, lead)
	metrics.RecordDBQuery("insert", time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStore, "failed to insert lead", err)
	}
	return nil
}

// FindRecent implements LeadRepository
func (r *MongoLeadRepository) FindRecent(ctx context.Context, limit int) ([]domain.Lead, error) {
	start := time.Now()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	leads, err := r.find(ctx, findOptions)
	metrics.RecordDBQuery("find_recent", time.Since(start), err)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStore, "failed to fetch leads", err)
	}
	return leads, nil
}

func (r *MongoLeadRepository) find(ctx context.Context, findOptions *options.FindOptions) ([]domain.Lead, error) {
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	leads := make([]domain.Lead, 0)
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

var _ LeadRepository = (*MongoLeadRepository)(nil)
