package repository

import (
	"context"
	"errors"
	"strings"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"column:code;unique"`
	Name string `gorm:"column:name;unique"`
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

// GetByCode finds an airline by its two-character designator
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&airline)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.Airline{
		ID:   airline.ID,
		Code: airline.Code,
		Name: airline.Name,
	}, nil
}
