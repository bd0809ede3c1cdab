package models

import "errors"

// ErrStockConflict is returned by storage when a unique stock field, such as
// the symbol, is already taken by another record.
var ErrStockConflict = errors.New("stock conflicts with an existing record")

// Stock event types carried by Message.Type
const (
	MessageStockCreated = "stock_created"
	MessageStockUpdated = "stock_updated"
	MessageStockDeleted = "stock_deleted"
)

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// DeletedStock is the content of a stock_deleted message
type DeletedStock struct {
	ID string `json:"id"`
}

// PriceChangeRequest is the body of a price change quote
type PriceChangeRequest struct {
	Amount   float64 `json:"amount"`
	Increase bool    `json:"increase"`
}

// PriceChangeQuote is the result of a price change quote
type PriceChangeQuote struct {
	ID            string  `json:"id"`
	CurrentPrice  float64 `json:"currentPrice"`
	AdjustedPrice float64 `json:"adjustedPrice"`
}
