package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vikasavnish/mandacarubroker/internal/models"
)

// MemoryStockRepository keeps stocks in process memory. It backs the
// "memory" storage driver and tests.
type MemoryStockRepository struct {
	mu     sync.RWMutex
	stocks []models.Stock
	index  map[string]int
	writes int
}

func NewMemoryStockRepository() *MemoryStockRepository {
	return &MemoryStockRepository{index: make(map[string]int)}
}

func (m *MemoryStockRepository) FindAll(ctx context.Context) ([]models.Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Stock, len(m.stocks))
	copy(out, m.stocks)
	return out, nil
}

func (m *MemoryStockRepository) FindByID(ctx context.Context, id string) (models.Stock, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return models.Stock{}, false, nil
	}
	return m.stocks[i], true, nil
}

func (m *MemoryStockRepository) FindBySymbol(ctx context.Context, symbol string) (models.Stock, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.stocks {
		if s.Symbol == symbol {
			return s, true, nil
		}
	}
	return models.Stock{}, false, nil
}

func (m *MemoryStockRepository) Save(ctx context.Context, stock *models.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.stocks {
		if s.Symbol == stock.Symbol && s.ID != stock.ID {
			return fmt.Errorf("%w: symbol %q already used by stock %s", models.ErrStockConflict, stock.Symbol, s.ID)
		}
	}

	now := time.Now()
	if stock.ID == "" {
		stock.ID = uuid.NewString()
	}
	if stock.CreatedAt.IsZero() {
		stock.CreatedAt = now
	}
	stock.UpdatedAt = now

	if i, ok := m.index[stock.ID]; ok {
		m.stocks[i] = *stock
	} else {
		m.index[stock.ID] = len(m.stocks)
		m.stocks = append(m.stocks, *stock)
	}
	m.writes++
	return nil
}

func (m *MemoryStockRepository) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes++
	i, ok := m.index[id]
	if !ok {
		return nil
	}

	m.stocks = append(m.stocks[:i], m.stocks[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.stocks); j++ {
		m.index[m.stocks[j].ID] = j
	}
	return nil
}

// WriteCount returns how many Save and DeleteByID calls have gone through
func (m *MemoryStockRepository) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
