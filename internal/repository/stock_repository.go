package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vikasavnish/mandacarubroker/internal/models"
)

// StockRepository stores stocks in a relational database through gorm
type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// FindAll returns every stock in insertion order. Stocks stored in the same
// instant come back ordered by id.
func (r *StockRepository) FindAll(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *StockRepository) FindByID(ctx context.Context, id string) (models.Stock, bool, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Stock{}, false, nil
	}
	if err != nil {
		return models.Stock{}, false, err
	}
	return stock, true, nil
}

// FindBySymbol looks a stock up by its ticker
func (r *StockRepository) FindBySymbol(ctx context.Context, symbol string) (models.Stock, bool, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Stock{}, false, nil
	}
	if err != nil {
		return models.Stock{}, false, err
	}
	return stock, true, nil
}

// Save inserts stocks without an ID (a UUID is assigned) and upserts the rest.
// A symbol already used by another stock yields models.ErrStockConflict.
func (r *StockRepository) Save(ctx context.Context, stock *models.Stock) error {
	db := r.db.WithContext(ctx)

	var err error
	if stock.ID == "" {
		err = db.Create(stock).Error
	} else {
		err = db.Save(stock).Error
	}
	return translateError(err)
}

// DeleteByID removes the stock if present. Missing ids are not an error.
func (r *StockRepository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Stock{}).Error
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", models.ErrStockConflict, err)
	}
	return err
}

// isUniqueViolation catches duplicate key errors from dialectors that were
// opened without gorm's error translation.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
