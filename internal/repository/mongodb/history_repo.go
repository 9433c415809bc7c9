package mongodb

import (
	"context"
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionStatus - коллекция журнала смены статусов.
const CollectionStatus = "history_status"

// HistoryRepository - журнал смены статусов.
type HistoryRepository interface {
	SaveHistoryStatus(ctx context.Context, doc *models.HistoryStatus) error
	ListHistory(ctx context.Context, relatedType, relatedID string) ([]models.HistoryStatus, error)
}

// MongoHistoryRepository - реализация HistoryRepository для MongoDB.
type MongoHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoHistoryRepository создаёт журнал в базе database.
func NewMongoHistoryRepository(client *mongo.Client, database string) *MongoHistoryRepository {
	return &MongoHistoryRepository{
		collection: client.Database(database).Collection(CollectionStatus),
	}
}

// SaveHistoryStatus сохраняет запись журнала.
func (r *MongoHistoryRepository) SaveHistoryStatus(ctx context.Context, doc *models.HistoryStatus) error {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert history status to Mongo: %w", err)
	}
	return nil
}

// ListHistory возвращает записи журнала объекта в порядке времени.
func (r *MongoHistoryRepository) ListHistory(ctx context.Context, relatedType, relatedID string) ([]models.HistoryStatus, error) {
	filter := bson.M{"related_type": relatedType, "related_id": relatedID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find history status in Mongo: %w", err)
	}
	defer cursor.Close(ctx)

	history := []models.HistoryStatus{}
	if err := cursor.All(ctx, &history); err != nil {
		return nil, fmt.Errorf("failed to decode history status: %w", err)
	}
	return history, nil
}

// NopHistoryRepository используется, когда MongoDB не настроена: записи отбрасываются.
type NopHistoryRepository struct{}

func (NopHistoryRepository) SaveHistoryStatus(context.Context, *models.HistoryStatus) error {
	return nil
}

func (NopHistoryRepository) ListHistory(context.Context, string, string) ([]models.HistoryStatus, error) {
	return []models.HistoryStatus{}, nil
}
