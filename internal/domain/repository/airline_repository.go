package repository

import (
	"context"

	"flight-extractor/internal/domain/entity"
)

// AirlineRepository defines the interface for airline operations
type AirlineRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
}
