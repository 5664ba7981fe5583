package repository

import (
	"context"

	"flight-extractor/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference lookups
type AirportRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airport, error)
}
