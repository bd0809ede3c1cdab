package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/mandacarubroker/internal/models"
	"github.com/vikasavnish/mandacarubroker/internal/utils"
	"github.com/vikasavnish/mandacarubroker/internal/validation"
)

// StockRepository is the storage the stock service works against
type StockRepository interface {
	FindAll(ctx context.Context) ([]models.Stock, error)
	FindByID(ctx context.Context, id string) (models.Stock, bool, error)
	Save(ctx context.Context, stock *models.Stock) error
	DeleteByID(ctx context.Context, id string) error
}

// Broadcaster receives a message after every successful change
type Broadcaster interface {
	Broadcast(msg models.Message)
}

// StockService holds the stock business rules. Absence is reported through
// the bool result, never as an error.
type StockService struct {
	repo        StockRepository
	validate    validation.Func
	broadcaster Broadcaster
}

// NewStockService creates a stock service. broadcaster may be nil.
func NewStockService(repo StockRepository, validate validation.Func, broadcaster Broadcaster) *StockService {
	return &StockService{
		repo:        repo,
		validate:    validate,
		broadcaster: broadcaster,
	}
}

func (s *StockService) ListAll(ctx context.Context) ([]models.Stock, error) {
	stocks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if stocks == nil {
		stocks = []models.Stock{}
	}
	return stocks, nil
}

func (s *StockService) GetByID(ctx context.Context, id string) (models.Stock, bool, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the request and persists a new stock built from it. A
// *validation.Error lists every broken rule; a taken symbol comes back from
// storage as models.ErrStockConflict.
func (s *StockService) Create(ctx context.Context, req models.StockRequest) (models.Stock, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return models.Stock{}, err
	}

	stock := models.NewStock(req)
	if err := s.repo.Save(ctx, &stock); err != nil {
		return models.Stock{}, err
	}

	log.Info().
		Str("request_id", utils.GetRequestIDFromContext(ctx)).
		Str("stock_id", stock.ID).
		Str("symbol", stock.Symbol).
		Msg("Stock created")

	s.broadcast(models.Message{Type: models.MessageStockCreated, Content: stock})
	return stock, nil
}

// Update replaces the symbol, company name and price of an existing stock.
// Unknown ids report false and write nothing.
func (s *StockService) Update(ctx context.Context, id string, req models.StockRequest) (models.Stock, bool, error) {
	existing, found, err := s.repo.FindByID(ctx, id)
	if err != nil || !found {
		return models.Stock{}, false, err
	}

	replacement := existing.WithDetails(req)
	if err := s.repo.Save(ctx, &replacement); err != nil {
		return models.Stock{}, true, err
	}

	log.Info().
		Str("request_id", utils.GetRequestIDFromContext(ctx)).
		Str("stock_id", replacement.ID).
		Str("symbol", replacement.Symbol).
		Msg("Stock updated")

	s.broadcast(models.Message{Type: models.MessageStockUpdated, Content: replacement})
	return replacement, true, nil
}

// Delete removes the stock. Deleting an unknown id is not an error.
func (s *StockService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	log.Info().
		Str("request_id", utils.GetRequestIDFromContext(ctx)).
		Str("stock_id", id).
		Msg("Stock deleted")

	s.broadcast(models.Message{Type: models.MessageStockDeleted, Content: models.DeletedStock{ID: id}})
	return nil
}

// QuotePriceChange reports what ChangePrice would make of the stock's price
// without storing anything.
func (s *StockService) QuotePriceChange(ctx context.Context, id string, change models.PriceChangeRequest) (models.PriceChangeQuote, bool, error) {
	stock, found, err := s.repo.FindByID(ctx, id)
	if err != nil || !found {
		return models.PriceChangeQuote{}, false, err
	}

	return models.PriceChangeQuote{
		ID:            stock.ID,
		CurrentPrice:  stock.Price,
		AdjustedPrice: stock.ChangePrice(change.Amount, change.Increase),
	}, true, nil
}

func (s *StockService) broadcast(msg models.Message) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(msg)
}
