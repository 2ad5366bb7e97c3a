package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
)

type ContactRepository struct {
	collection *mongo.Collection
}

// Ensure ContactRepository implements the repository interface
var _ repositories.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository creates a new MongoDB contact repository
func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{
		collection: db.Collection("contacts"),
	}
}

// Create implements repositories.ContactRepository
func (r *ContactRepository) Create(ctx context.Context, contact *entities.Contact) error {
	if contact == nil {
		return errors.New("contact cannot be nil")
	}
	if err := contact.Validate(); err != nil {
		return err
	}

	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}

	doc := bson.M{
		"name":       contact.Name,
		"email":      contact.Email,
		"message":    contact.Message,
		"created_at": contact.CreatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		contact.ID = oid.Hex()
	}

	return nil
}
