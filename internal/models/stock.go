package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock is a single tradable security record. Two stocks are the same record
// only when their IDs match.
type Stock struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Symbol      string    `gorm:"uniqueIndex;not null" json:"symbol"`
	CompanyName string    `gorm:"not null" json:"companyName"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Stock) TableName() string {
	return "stocks"
}

// BeforeCreate assigns a fresh identifier to stocks saved without one
func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StockRequest carries the proposed fields of a stock. It is never persisted.
type StockRequest struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
}

// NewStock builds an unsaved stock copying every field of the request verbatim.
func NewStock(req StockRequest) Stock {
	return Stock{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Price:       req.Price,
	}
}

// NewAdjustedStock builds an unsaved stock whose price is derived by applying
// ChangePrice to a zero starting price, with the requested price as the
// increase target. A positive requested price therefore lands on its negation.
func NewAdjustedStock(req StockRequest) Stock {
	s := Stock{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
	}
	s.Price = s.ChangePrice(req.Price, true)
	return s
}

// ChangePrice returns the price that would result from moving the current
// price by amount. The stored price is left untouched.
//
// With increase set, an amount below the current price is added and any other
// amount is subtracted. Without it, an amount above the current price is added
// and any other amount is subtracted.
func (s Stock) ChangePrice(amount float64, increase bool) float64 {
	current := decimal.NewFromFloat(s.Price)
	delta := decimal.NewFromFloat(amount)

	var add bool
	if increase {
		add = delta.LessThan(current)
	} else {
		add = delta.GreaterThan(current)
	}

	if add {
		return current.Add(delta).InexactFloat64()
	}
	return current.Sub(delta).InexactFloat64()
}

// WithDetails returns a copy of s carrying the request's symbol, company name
// and price. Identity and creation time are kept.
func (s Stock) WithDetails(req StockRequest) Stock {
	s.Symbol = req.Symbol
	s.CompanyName = req.CompanyName
	s.Price = req.Price
	return s
}

// Equal reports whether s and other identify the same record.
func (s Stock) Equal(other Stock) bool {
	return s.ID == other.ID
}
