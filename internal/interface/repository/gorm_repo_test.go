package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flight-extractor/internal/domain/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Timezonelist{}, &Airlines{}))

	require.NoError(t, db.Create(&[]Timezonelist{
		{AirportCode: "SFO", AirportName: "San Francisco International", CityCode: "SFO", CityName: "San Francisco", GmtTz: "-8", TzName: "America/Los_Angeles"},
		{AirportCode: "CGK", AirportName: "Soekarno-Hatta International", CityCode: "JKT", CityName: "Jakarta", GmtTz: "+7", TzName: "Asia/Jakarta"},
	}).Error)
	require.NoError(t, db.Create(&[]Airlines{
		{Code: "UA", Name: "United Airlines"},
		{Code: "GA", Name: "Garuda Indonesia"},
	}).Error)
	return db
}

func TestGormAirportRepository(t *testing.T) {
	repo := NewGormAirportRepository(newTestDB(t))
	ctx := context.Background()

	airport, err := repo.GetByCode(ctx, "cgk ")
	require.NoError(t, err)
	assert.Equal(t, "CGK", airport.Code)
	assert.Equal(t, "Jakarta", airport.CityName)
	assert.Equal(t, "Asia/Jakarta", airport.TzName)

	loc, err := airport.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())

	_, err = repo.GetByCode(ctx, "XYZ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormAirlineRepository(t *testing.T) {
	repo := NewGormAirlineRepository(newTestDB(t))
	ctx := context.Background()

	airline, err := repo.GetByCode(ctx, "ua")
	require.NoError(t, err)
	assert.Equal(t, "United Airlines", airline.Name)

	_, err = repo.GetByCode(ctx, "ZZ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
