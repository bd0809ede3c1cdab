package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vikasavnish/mandacarubroker/internal/models"
)

type stockStore interface {
	FindAll(ctx context.Context) ([]models.Stock, error)
	FindByID(ctx context.Context, id string) (models.Stock, bool, error)
	FindBySymbol(ctx context.Context, symbol string) (models.Stock, bool, error)
	Save(ctx context.Context, stock *models.Stock) error
	DeleteByID(ctx context.Context, id string) error
}

func newSQLiteRepository(t *testing.T) *StockRepository {
	t.Helper()

	// Setup in-memory database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// Migrate schema
	require.NoError(t, db.AutoMigrate(&models.Stock{}))

	return NewStockRepository(db)
}

func TestRepositories(t *testing.T) {
	stores := map[string]func(t *testing.T) stockStore{
		"gorm":   func(t *testing.T) stockStore { return newSQLiteRepository(t) },
		"memory": func(t *testing.T) stockStore { return NewMemoryStockRepository() },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("save assigns id and keeps insertion order", func(t *testing.T) {
				testSaveAndFindAll(t, open(t))
			})
			t.Run("save upserts existing id", func(t *testing.T) {
				testUpsert(t, open(t))
			})
			t.Run("duplicate symbol conflicts", func(t *testing.T) {
				testConflict(t, open(t))
			})
			t.Run("delete is idempotent", func(t *testing.T) {
				testDelete(t, open(t))
			})
		})
	}
}

func testSaveAndFindAll(t *testing.T, repo stockStore) {
	ctx := context.Background()

	rpm := models.NewStock(models.StockRequest{Symbol: "RPM3", CompanyName: "3R PETROLEUM", Price: 90.45})
	all := models.NewStock(models.StockRequest{Symbol: "ALL3", CompanyName: "ALLOS", Price: 121.60})
	azl := models.NewStock(models.StockRequest{Symbol: "AZL4", CompanyName: "AZUL", Price: 230.20})
	for _, s := range []*models.Stock{&rpm, &all, &azl} {
		require.NoError(t, repo.Save(ctx, s))
		assert.NotEmpty(t, s.ID)
	}
	assert.NotEqual(t, rpm.ID, all.ID)

	stocks, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stocks, 3)
	assert.Equal(t, []string{"RPM3", "ALL3", "AZL4"}, []string{stocks[0].Symbol, stocks[1].Symbol, stocks[2].Symbol})

	found, ok, err := repo.FindByID(ctx, rpm.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3R PETROLEUM", found.CompanyName)
	assert.Equal(t, 90.45, found.Price)

	bySymbol, ok, err := repo.FindBySymbol(ctx, "AZL4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, azl.ID, bySymbol.ID)

	_, ok, err = repo.FindByID(ctx, "1a2b3c2d")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testUpsert(t *testing.T, repo stockStore) {
	ctx := context.Background()

	stock := models.NewStock(models.StockRequest{Symbol: "CMG4", CompanyName: "CEMIG", Price: 129.67})
	require.NoError(t, repo.Save(ctx, &stock))

	changed := stock.WithDetails(models.StockRequest{Symbol: "CMIG4", CompanyName: "CEMIG SA", Price: 11.5})
	require.NoError(t, repo.Save(ctx, &changed))

	stocks, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, stock.ID, stocks[0].ID)
	assert.Equal(t, "CMIG4", stocks[0].Symbol)
	assert.Equal(t, 11.5, stocks[0].Price)

	// an unknown id is inserted under that id
	preset := models.Stock{ID: "preset-id", Symbol: "PRE3", CompanyName: "PRESET", Price: 1}
	require.NoError(t, repo.Save(ctx, &preset))
	got, ok, err := repo.FindByID(ctx, "preset-id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PRE3", got.Symbol)
}

func testConflict(t *testing.T, repo stockStore) {
	ctx := context.Background()

	first := models.NewStock(models.StockRequest{Symbol: "RPM3", CompanyName: "3R PETROLEUM", Price: 90.45})
	require.NoError(t, repo.Save(ctx, &first))

	duplicate := models.NewStock(models.StockRequest{Symbol: "RPM3", CompanyName: "PETROLEUM", Price: 134.67})
	err := repo.Save(ctx, &duplicate)
	assert.ErrorIs(t, err, models.ErrStockConflict)

	other := models.NewStock(models.StockRequest{Symbol: "ALL3", CompanyName: "ALLOS", Price: 121.60})
	require.NoError(t, repo.Save(ctx, &other))
	renamed := other.WithDetails(models.StockRequest{Symbol: "RPM3", CompanyName: "ALLOS", Price: 121.60})
	assert.ErrorIs(t, repo.Save(ctx, &renamed), models.ErrStockConflict)

	stocks, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stocks, 2)
}

func testDelete(t *testing.T, repo stockStore) {
	ctx := context.Background()

	a := models.NewStock(models.StockRequest{Symbol: "A3", CompanyName: "A", Price: 1})
	b := models.NewStock(models.StockRequest{Symbol: "B3", CompanyName: "B", Price: 2})
	require.NoError(t, repo.Save(ctx, &a))
	require.NoError(t, repo.Save(ctx, &b))

	require.NoError(t, repo.DeleteByID(ctx, a.ID))
	require.NoError(t, repo.DeleteByID(ctx, a.ID))
	require.NoError(t, repo.DeleteByID(ctx, "never-existed"))

	_, ok, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	stillThere, ok, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B3", stillThere.Symbol)
}

func TestMemoryRepositoryCountsWrites(t *testing.T) {
	repo := NewMemoryStockRepository()
	ctx := context.Background()

	s := models.NewStock(models.StockRequest{Symbol: "A3", CompanyName: "A"})
	require.NoError(t, repo.Save(ctx, &s))
	require.NoError(t, repo.DeleteByID(ctx, s.ID))

	dup := models.NewStock(models.StockRequest{Symbol: "B3", CompanyName: "B"})
	require.NoError(t, repo.Save(ctx, &dup))
	clash := models.NewStock(models.StockRequest{Symbol: "B3", CompanyName: "C"})
	require.Error(t, repo.Save(ctx, &clash))

	assert.Equal(t, 3, repo.WriteCount())
}

func TestFindAllBreaksTimestampTiesByID(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, s := range []models.Stock{
		{ID: "c-id", Symbol: "AZL4", CompanyName: "AZUL", Price: 230.20, CreatedAt: at},
		{ID: "a-id", Symbol: "RPM3", CompanyName: "3R PETROLEUM", Price: 90.45, CreatedAt: at},
		{ID: "b-id", Symbol: "ALL3", CompanyName: "ALLOS", Price: 121.60, CreatedAt: at},
	} {
		stock := s
		require.NoError(t, repo.Save(ctx, &stock))
	}

	for i := 0; i < 3; i++ {
		stocks, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, stocks, 3)
		assert.Equal(t, []string{"a-id", "b-id", "c-id"}, []string{stocks[0].ID, stocks[1].ID, stocks[2].ID})
	}
}
