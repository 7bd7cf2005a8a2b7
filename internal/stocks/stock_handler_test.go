package stocks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tobi647/beer-distribution-app-sub000/pkg/auditlog"
	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type MockStockOperations struct {
	mock.Mock
}

func (m *MockStockOperations) CreateStock(fields ItemFields) (*models.StockItem, *PriceWarning, error) {
	args := m.Called(fields)
	var item *models.StockItem
	if args.Get(0) != nil {
		item = args.Get(0).(*models.StockItem)
	}
	var warning *PriceWarning
	if args.Get(1) != nil {
		warning = args.Get(1).(*PriceWarning)
	}
	return item, warning, args.Error(2)
}

func (m *MockStockOperations) GetStock(id string) (*models.StockItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

func (m *MockStockOperations) ListStocks(searchTerm, sortField string, order SortOrder) ([]models.StockItem, error) {
	args := m.Called(searchTerm, sortField, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockItem), args.Error(1)
}

func (m *MockStockOperations) ListLowStocks() ([]models.StockItem, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockItem), args.Error(1)
}

func (m *MockStockOperations) EditStock(id string, fields ItemFields) (*models.StockItem, *PriceWarning, error) {
	args := m.Called(id, fields)
	var item *models.StockItem
	if args.Get(0) != nil {
		item = args.Get(0).(*models.StockItem)
	}
	var warning *PriceWarning
	if args.Get(1) != nil {
		warning = args.Get(1).(*PriceWarning)
	}
	return item, warning, args.Error(2)
}

func (m *MockStockOperations) AddSupply(id string, batch SupplyBatch) (*models.StockItem, error) {
	args := m.Called(id, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

func (m *MockStockOperations) TogglePriceLock(id string, lock bool, currentPrice decimal.Decimal) (*models.StockItem, *PriceWarning, error) {
	args := m.Called(id, lock, currentPrice)
	var item *models.StockItem
	if args.Get(0) != nil {
		item = args.Get(0).(*models.StockItem)
	}
	var warning *PriceWarning
	if args.Get(1) != nil {
		warning = args.Get(1).(*PriceWarning)
	}
	return item, warning, args.Error(2)
}

func (m *MockStockOperations) DeleteStock(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStockOperations) GetHistory(id string, filter HistoryFilter) ([]models.SupplyEntry, error) {
	args := m.Called(id, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupplyEntry), args.Error(1)
}

// Audit writes are fire and forget, so the handler tests stub them out
// instead of asserting on them.
type noopAudit struct{}

func (noopAudit) Log(action string, data interface{}, item auditlog.Auditable) {}

func (noopAudit) GetResourceLog(id string, resourceType string) ([]models.AuditLog, error) {
	return []models.AuditLog{}, nil
}

func setupStockRouter(service *MockStockOperations) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewStockHandler(service, noopAudit{}, noopAudit{}).RegisterRoutes(router)
	return router
}

func TestCreateStockHandler(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		serviceItem    *models.StockItem
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "creates item",
			payload:        `{"name":"Pilsner 0.5l","type":"beer","supplier":"Brauhaus GmbH","quantity":100,"base_cost":"10.00","shipping_cost":"2.00","additional_costs":"1.00","markup":"30","is_markup_percentage":true}`,
			serviceItem:    storedItem(),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "rejects malformed JSON",
			payload:        `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects missing required fields",
			payload:        `{"quantity":10}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "maps validation error",
			payload:        `{"name":"Pilsner","type":"beer","supplier":"Brauhaus GmbH","markup":"-5"}`,
			serviceErr:     custom_error.NewValidationError("markup", "must not be negative"),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockStockOperations)
			if tt.serviceItem != nil || tt.serviceErr != nil {
				service.On("CreateStock", mock.AnythingOfType("stocks.ItemFields")).
					Return(tt.serviceItem, nil, tt.serviceErr)
			}
			router := setupStockRouter(service)

			req, _ := http.NewRequest(http.MethodPost, "/stocks", bytes.NewBufferString(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCreateStockHandlerReturnsValidationDetails(t *testing.T) {
	service := new(MockStockOperations)
	service.On("CreateStock", mock.Anything).
		Return(nil, nil, custom_error.NewValidationError("markup", "must not be negative"))
	router := setupStockRouter(service)

	payload := `{"name":"Pilsner","type":"beer","supplier":"Brauhaus GmbH","markup":"-5"}`
	req, _ := http.NewRequest(http.MethodPost, "/stocks", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "markup", body["field"])
	assert.Equal(t, "must not be negative", body["reason"])
}

func TestGetStockHandler(t *testing.T) {
	item := storedItem()

	service := new(MockStockOperations)
	service.On("GetStock", item.ID).Return(item, nil)
	service.On("GetStock", "missing").Return(nil, custom_error.NewNotFoundError("stock item", "missing"))
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/stocks/"+item.ID, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.StockItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, item.Name, got.Name)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/stocks/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListStocksHandlerPassesQuery(t *testing.T) {
	service := new(MockStockOperations)
	service.On("ListStocks", "beer", "quantity", SortDesc).Return(sampleStockList(), nil)
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/stocks?search=beer&sort=quantity&order=desc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestListLowStocksHandler(t *testing.T) {
	service := new(MockStockOperations)
	service.On("ListLowStocks").Return([]models.StockItem{}, nil)
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/stocks/low", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestAddSupplyHandler(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "blends batch",
			payload:        `{"quantity":50,"base_cost":"16.00","shipping_cost":"2.00","additional_costs":"1.00"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejects missing quantity",
			payload:        `{"base_cost":"16.00"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "maps unknown item to 404",
			payload:        `{"quantity":50,"base_cost":"16.00"}`,
			serviceErr:     custom_error.NewNotFoundError("stock item", "abc"),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockStockOperations)
			if tt.expectedStatus != http.StatusBadRequest {
				var item *models.StockItem
				if tt.serviceErr == nil {
					item = storedItem()
				}
				service.On("AddSupply", "abc", mock.AnythingOfType("stocks.SupplyBatch")).
					Return(item, tt.serviceErr)
			}
			router := setupStockRouter(service)

			req, _ := http.NewRequest(http.MethodPost, "/stocks/abc/supply", bytes.NewBufferString(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestTogglePriceLockHandlerIncludesWarning(t *testing.T) {
	item := storedItem()
	warning := &PriceWarning{
		ManualPrice:    dec("20.00"),
		SuggestedPrice: dec("16.90"),
		DeviationPct:   dec("18.34"),
	}

	service := new(MockStockOperations)
	service.On("TogglePriceLock", item.ID, true, mock.Anything).Return(item, warning, nil)
	router := setupStockRouter(service)

	payload := `{"lock":true,"current_price":"20.00"}`
	req, _ := http.NewRequest(http.MethodPost, "/stocks/"+item.ID+"/price-lock", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "item")
	assert.Contains(t, body, "warning")
}

func TestUpdateStockHandlerIncludesWarning(t *testing.T) {
	item := storedItem()
	warning := &PriceWarning{
		ManualPrice:    dec("20.00"),
		SuggestedPrice: dec("16.90"),
		DeviationPct:   dec("18.34"),
	}

	service := new(MockStockOperations)
	service.On("EditStock", item.ID, mock.AnythingOfType("stocks.ItemFields")).
		Return(item, warning, nil)
	router := setupStockRouter(service)

	payload := `{"name":"Pilsner 0.5l","type":"beer","supplier":"Brauhaus GmbH","quantity":100,"base_cost":"10.00","shipping_cost":"2.00","additional_costs":"1.00","markup":"30","is_markup_percentage":true,"is_price_locked":true,"selling_price":"20.00"}`
	req, _ := http.NewRequest(http.MethodPut, "/stocks/"+item.ID, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "item")
	require.Contains(t, body, "warning")

	var got PriceWarning
	require.NoError(t, json.Unmarshal(body["warning"], &got))
	assert.Equal(t, "18.34", got.DeviationPct.StringFixed(2))
}

// The audit goroutine outlives the request, so it must log a snapshot of the
// item rather than the pointer the response serialized.
type capturingAudit struct {
	logged chan auditlog.Auditable
}

func (c *capturingAudit) Log(action string, data interface{}, item auditlog.Auditable) {
	c.logged <- item
}

func TestCreateStockHandlerAuditsSnapshot(t *testing.T) {
	item := storedItem()

	service := new(MockStockOperations)
	service.On("CreateStock", mock.Anything).Return(item, nil, nil)

	audit := &capturingAudit{logged: make(chan auditlog.Auditable, 1)}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewStockHandler(service, audit, noopAudit{}).RegisterRoutes(router)

	payload := `{"name":"Pilsner 0.5l","type":"beer","supplier":"Brauhaus GmbH","quantity":100,"base_cost":"10.00","shipping_cost":"2.00","additional_costs":"1.00","markup":"30","is_markup_percentage":true}`
	req, _ := http.NewRequest(http.MethodPost, "/stocks", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	select {
	case logged := <-audit.logged:
		snapshot, ok := logged.(*models.StockItem)
		require.True(t, ok)
		assert.NotSame(t, item, snapshot)
		assert.Equal(t, item.ID, snapshot.ID)
	case <-time.After(time.Second):
		t.Fatal("audit entry was never written")
	}
}

func TestDeleteStockHandler(t *testing.T) {
	service := new(MockStockOperations)
	service.On("DeleteStock", "abc").Return(nil)
	service.On("DeleteStock", "missing").Return(custom_error.NewNotFoundError("stock item", "missing"))
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/stocks/abc", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodDelete, "/stocks/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistoryHandlerParsesFilter(t *testing.T) {
	service := new(MockStockOperations)
	service.On("GetHistory", "abc", mock.MatchedBy(func(f HistoryFilter) bool {
		return f.From != nil && f.Supplier == "Brauhaus GmbH" &&
			f.MinQuantity != nil && *f.MinQuantity == 1 &&
			f.SortField == "date" && f.Order == SortDesc
	})).Return([]models.SupplyEntry{}, nil)
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet,
		"/stocks/abc/history?from=2026-03-01&supplier=Brauhaus+GmbH&min_quantity=1&order=desc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestGetHistoryHandlerRejectsBadDate(t *testing.T) {
	service := new(MockStockOperations)
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/stocks/abc/history?from=yesterday", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "GetHistory", mock.Anything, mock.Anything)
}

func TestGetAuditLogHandler(t *testing.T) {
	item := storedItem()

	service := new(MockStockOperations)
	service.On("GetStock", item.ID).Return(item, nil)
	service.On("GetStock", "missing").Return(nil, custom_error.NewNotFoundError("stock item", "missing"))
	router := setupStockRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/stocks/"+item.ID+"/audit-log", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/stocks/missing/audit-log", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHistoryHandler(t *testing.T) {
	item := storedItem()
	item.SupplyHistory = exportHistory()

	tests := []struct {
		name                string
		url                 string
		expectedStatus      int
		expectedContentType string
	}{
		{"csv by default", "/stocks/abc/history/export", http.StatusOK, "text/csv"},
		{"explicit csv", "/stocks/abc/history/export?format=csv", http.StatusOK, "text/csv"},
		{"xlsx", "/stocks/abc/history/export?format=xlsx", http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"unknown format", "/stocks/abc/history/export?format=pdf", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockStockOperations)
			service.On("GetStock", "abc").Return(item, nil)
			router := setupStockRouter(service)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedContentType != "" {
				assert.Equal(t, tt.expectedContentType, w.Header().Get("Content-Type"))
				assert.NotZero(t, w.Body.Len())
			}
		})
	}
}
