package repository

import (
	"context"
	"errors"
	"fmt"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultEmailCollection is the collection archived emails are read from
const DefaultEmailCollection = "emailLogs"

// MongoEmailRepository implements the EmailRepository interface
type MongoEmailRepository struct {
	collection *mongo.Collection
}

// NewMongoEmailRepository creates a new MongoDB email repository
func NewMongoEmailRepository(db *mongo.Database, collection string) repository.EmailRepository {
	if collection == "" {
		collection = DefaultEmailCollection
	}
	return &MongoEmailRepository{
		collection: db.Collection(collection),
	}
}

// FindByEmailID finds an email by Gmail message ID
func (r *MongoEmailRepository) FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error) {
	var email entity.Email
	err := r.collection.FindOne(ctx, bson.M{"emailId": emailID}).Decode(&email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find email %s: %w", emailID, err)
	}
	return &email, nil
}
