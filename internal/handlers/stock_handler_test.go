package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikasavnish/mandacarubroker/internal/models"
	"github.com/vikasavnish/mandacarubroker/internal/repository"
	"github.com/vikasavnish/mandacarubroker/internal/services"
	"github.com/vikasavnish/mandacarubroker/internal/validation"
)

func newTestRouter(t *testing.T, repo services.StockRepository) *mux.Router {
	t.Helper()
	validate, err := validation.Compile(validation.DefaultRules())
	require.NoError(t, err)

	router := mux.NewRouter()
	NewStockHandler(services.NewStockService(repo, validate, nil)).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestStockLifecycle(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStockRepository())

	rec := do(router, http.MethodPost, "/stocks", `{"symbol":"RPM3","companyName":"3R PETROLEUM","price":90.45}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Stock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "RPM3", created.Symbol)
	assert.Equal(t, 90.45, created.Price)

	rec = do(router, http.MethodGet, "/stocks/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"companyName":"3R PETROLEUM"`)

	rec = do(router, http.MethodPut, "/stocks/"+created.ID, `{"symbol":"RPM3","companyName":"3R PETRO","price":91}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Stock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "3R PETRO", updated.CompanyName)

	rec = do(router, http.MethodGet, "/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stocks []models.Stock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stocks))
	require.Len(t, stocks, 1)
	assert.Equal(t, 91.0, stocks[0].Price)

	rec = do(router, http.MethodDelete, "/stocks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(router, http.MethodGet, "/stocks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestListStartsEmpty(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStockRepository())

	rec := do(router, http.MethodGet, "/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCreateRejectsBlankFields(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStockRepository())

	rec := do(router, http.MethodPost, "/stocks", `{"symbol":" ","companyName":"","price":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	detail := decodeError(t, rec)
	assert.Equal(t, ErrCodeValidation, detail.Code)
	assert.Equal(t, "Validation failed. Details: [symbol: must not be blank], [companyName: must not be blank]", detail.Message)
	assert.Equal(t, []validation.Violation{
		{Field: "symbol", Message: "must not be blank"},
		{Field: "companyName", Message: "must not be blank"},
	}, detail.Fields)
}

func TestCreateRejectsDuplicateSymbol(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStockRepository())

	body := `{"symbol":"ALL3","companyName":"ALLOS","price":121.6}`
	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/stocks", body).Code)

	rec := do(router, http.MethodPost, "/stocks", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ErrCodeConflict, decodeError(t, rec).Code)
}

func TestMalformedBodies(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryStockRepository())

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/stocks"},
		{http.MethodPut, "/stocks/abc"},
		{http.MethodPost, "/stocks/abc/price-change"},
	} {
		rec := do(router, tc.method, tc.path, `{"symbol":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.Equal(t, ErrCodeInvalidRequest, decodeError(t, rec).Code, tc.path)
	}
}

func TestUnknownIDs(t *testing.T) {
	repo := repository.NewMemoryStockRepository()
	router := newTestRouter(t, repo)

	rec := do(router, http.MethodPut, "/stocks/1a2b3c2d", `{"symbol":"X3","companyName":"X","price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/stocks/1a2b3c2d/price-change", `{"amount":1,"increase":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodDelete, "/stocks/1a2b3c2d", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// only the delete reached storage
	assert.Equal(t, 1, repo.WriteCount())
}

func TestQuotePriceChange(t *testing.T) {
	repo := repository.NewMemoryStockRepository()
	router := newTestRouter(t, repo)

	rec := do(router, http.MethodPost, "/stocks", `{"symbol":"AZL4","companyName":"AZUL","price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Stock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(router, http.MethodPost, "/stocks/"+created.ID+"/price-change", `{"amount":50,"increase":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var quote models.PriceChangeQuote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, created.ID, quote.ID)
	assert.Equal(t, 100.0, quote.CurrentPrice)
	assert.Equal(t, 150.0, quote.AdjustedPrice)

	// quoting does not store the new price
	stock, _, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stock.Price)
}

type failingRepository struct{}

var errStorageDown = errors.New("storage down")

func (failingRepository) FindAll(context.Context) ([]models.Stock, error) {
	return nil, errStorageDown
}

func (failingRepository) FindByID(context.Context, string) (models.Stock, bool, error) {
	return models.Stock{}, false, errStorageDown
}

func (failingRepository) Save(context.Context, *models.Stock) error {
	return errStorageDown
}

func (failingRepository) DeleteByID(context.Context, string) error {
	return errStorageDown
}

func TestStorageFailuresAreInternalErrors(t *testing.T) {
	router := newTestRouter(t, failingRepository{})

	for _, tc := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/stocks", ""},
		{http.MethodGet, "/stocks/abc", ""},
		{http.MethodPost, "/stocks", `{"symbol":"X3","companyName":"X","price":1}`},
		{http.MethodPut, "/stocks/abc", `{"symbol":"X3","companyName":"X","price":1}`},
		{http.MethodDelete, "/stocks/abc", ""},
	} {
		rec := do(router, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusInternalServerError, rec.Code, tc.method+" "+tc.path)
		detail := decodeError(t, rec)
		assert.Equal(t, ErrCodeInternalServer, detail.Code)
		assert.NotContains(t, detail.Message, "storage down")
	}
}
