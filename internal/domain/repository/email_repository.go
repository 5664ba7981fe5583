package repository

import (
	"context"
	"errors"

	"flight-extractor/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no record matches
var ErrNotFound = errors.New("not found")

// EmailRepository defines the interface for reading emails from a mailbox
type EmailRepository interface {
	FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error)
}
