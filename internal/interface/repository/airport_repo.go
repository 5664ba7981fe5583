package repository

import (
	"context"
	"errors"
	"strings"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface on top of
// the timezone reference table
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Timezonelist GORM model for database mapping
type Timezonelist struct {
	ID          uint   `gorm:"primaryKey"`
	AirportCode string `gorm:"column:airportcode;unique"`
	AirportName string `gorm:"column:airport_name"`
	CityCode    string `gorm:"column:citycode"`
	CityName    string `gorm:"column:cityname"`
	GmtTz       string `gorm:"column:gmttz"`
	TzName      string `gorm:"column:tzname"`
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

// GetByCode finds an airport by IATA code
func (r *GormAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	var row Timezonelist
	result := r.db.WithContext(ctx).
		Where("airportcode = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&row)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.Airport{
		ID:       row.ID,
		Code:     row.AirportCode,
		Name:     row.AirportName,
		CityCode: row.CityCode,
		CityName: row.CityName,
		GmtTz:    row.GmtTz,
		TzName:   row.TzName,
	}, nil
}
