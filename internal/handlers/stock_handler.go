package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vikasavnish/mandacarubroker/internal/models"
	"github.com/vikasavnish/mandacarubroker/internal/services"
	"github.com/vikasavnish/mandacarubroker/internal/validation"
)

type StockHandler struct {
	stockService *services.StockService
}

func NewStockHandler(stockService *services.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/stocks", h.GetStocks).Methods("GET")
	router.HandleFunc("/stocks/{id}", h.GetStock).Methods("GET")
	router.HandleFunc("/stocks", h.CreateStock).Methods("POST")
	router.HandleFunc("/stocks/{id}", h.UpdateStock).Methods("PUT")
	router.HandleFunc("/stocks/{id}", h.DeleteStock).Methods("DELETE")
	router.HandleFunc("/stocks/{id}/price-change", h.QuotePriceChange).Methods("POST")
}

// GetStocks returns every stock in creation order
func (h *StockHandler) GetStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockService.ListAll(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stocks)
}

// GetStock returns a single stock by ID
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	stock, found, err := h.stockService.GetByID(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "Stock not found")
		return
	}

	writeJSON(w, http.StatusOK, stock)
}

// CreateStock creates a new stock
func (h *StockHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	var req models.StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	stock, err := h.stockService.Create(r.Context(), req)
	if err != nil {
		h.writeChangeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, stock)
}

// UpdateStock replaces the details of an existing stock
func (h *StockHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	stock, found, err := h.stockService.Update(r.Context(), id, req)
	if err != nil {
		h.writeChangeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "Stock not found")
		return
	}

	writeJSON(w, http.StatusOK, stock)
}

// DeleteStock removes a stock. Unknown ids are not reported.
func (h *StockHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.stockService.Delete(r.Context(), id); err != nil {
		writeInternalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// QuotePriceChange shows the price a stock would get after a change
func (h *StockHandler) QuotePriceChange(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.PriceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	quote, found, err := h.stockService.QuotePriceChange(r.Context(), id, req)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "Stock not found")
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func (h *StockHandler) writeChangeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, r, verr)
	case errors.Is(err, models.ErrStockConflict):
		writeError(w, r, http.StatusConflict, ErrCodeConflict, "A stock with this symbol already exists")
	default:
		writeInternalError(w, r, err)
	}
}
