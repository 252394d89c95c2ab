package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
	"github.com/0finn0the0human0/springbootTraining/internal/dto"
	apihttp "github.com/0finn0the0human0/springbootTraining/internal/http"
	"github.com/0finn0the0human0/springbootTraining/internal/repository"
	"github.com/0finn0the0human0/springbootTraining/internal/service"
	"github.com/0finn0the0human0/springbootTraining/internal/storage/db"
	"github.com/0finn0the0human0/springbootTraining/pkg/correlationid"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
)

var httpCfg = config.HTTP{Swagger: true, AllowedOrigins: []string{"*"}}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newValidator(t *testing.T, failFast bool) *validator.DefaultValidator {
	t.Helper()
	v, err := validator.NewDefaultValidator(validator.WithFailFast(failFast))
	require.NoError(t, err)
	return v
}

func newTestServer(t *testing.T, failFast bool) http.Handler {
	t.Helper()

	gormDB, err := db.OpenGorm(sqlite.Open(":memory:"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	productSvc := service.NewProductService(
		discardLogger(),
		repository.NewGormProductRepository(gormDB),
		service.NewMetrics(prometheus.NewRegistry()),
	)

	return apihttp.New(httpCfg, discardLogger(), newValidator(t, failFast), productSvc, db.NewGormClient(gormDB)).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestProductAPI_Lifecycle(t *testing.T) {
	h := newTestServer(t, true)

	resp := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","retailPrice":19.99}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"Widget","description":null,"retailPrice":19.99}`, resp.Body.String())
	assert.Equal(t, "/api/products/1", resp.Header().Get("Location"))
	assert.NotEmpty(t, resp.Header().Get(correlationid.Header))
	assert.NotContains(t, resp.Body.String(), "vendorPrice")

	resp = do(t, h, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","description":null,"retailPrice":19.99}`, resp.Body.String())

	resp = do(t, h, http.MethodGet, "/api/products/search?name=wid", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Widget","description":null,"retailPrice":19.99}]`, resp.Body.String())

	resp = do(t, h, http.MethodPut, "/api/products/1", `{"name":"Widget","description":"Now blue","retailPrice":"25"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","description":"Now blue","retailPrice":25.00}`, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"retailPrice":25.00`)

	resp = do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	resp = do(t, h, http.MethodDelete, "/api/products/1", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())

	resp = do(t, h, http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"code":"PRODUCT_NOT_FOUND","message":"Product not found"}`, resp.Body.String())

	resp = do(t, h, http.MethodDelete, "/api/products/1", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(t, h, http.MethodPut, "/api/products/1", `{"name":"Widget","retailPrice":19.99}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProductAPI_Errors(t *testing.T) {
	h := newTestServer(t, true)

	resp := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","retailPrice":19.99}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "retail price below markup",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Cheap","retailPrice":9.99}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"RETAIL_PRICE_BELOW_MARKUP","message":"Retail Price cannot be less than 10 dollars."}`,
		},
		{
			name:       "duplicate name",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Widget","retailPrice":29.99}`,
			wantStatus: http.StatusConflict,
			wantBody:   `{"code":"PRODUCT_NAME_CONFLICT","message":"A product with this name already exists"}`,
		},
		{
			name:       "special characters",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Widget!","retailPrice":19.99}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"name":"No special characters allowed."}}`,
		},
		{
			name:       "fail fast reports only the first violation",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"  ","retailPrice":-1}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"name":"Product Name is required."}}`,
		},
		{
			name:       "price over the digit limit",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Yacht","retailPrice":100000}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"retailPrice":"Retail Price max limit is 99999.99."}}`,
		},
		{
			name:       "price with an extreme exponent",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Gizmo","retailPrice":1e-200000000}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"retailPrice":"Retail Price max limit is 99999.99."}}`,
		},
		{
			name:       "missing price",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Widget"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"retailPrice":"Retail Price is required."}}`,
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"INVALID_REQUEST","message":"Malformed request body"}`,
		},
		{
			name:       "trailing data after body",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Gizmo","retailPrice":19.99} trailing`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"INVALID_REQUEST","message":"Malformed request body"}`,
		},
		{
			name:       "second document after body",
			method:     http.MethodPost,
			target:     "/api/products",
			body:       `{"name":"Gizmo","retailPrice":19.99}{"name":"Other","retailPrice":19.99}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"INVALID_REQUEST","message":"Malformed request body"}`,
		},
		{
			name:       "malformed id",
			method:     http.MethodGet,
			target:     "/api/products/abc",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"INVALID_REQUEST","message":"Invalid format for parameter id"}`,
		},
		{
			name:       "search term too short",
			method:     http.MethodGet,
			target:     "/api/products/search?name=w",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"name":"Invalid character length, Please try again."}}`,
		},
		{
			name:       "search term missing",
			method:     http.MethodGet,
			target:     "/api/products/search",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_FAILED","message":"validation error","errors":{"name":"Enter search text."}}`,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			target:     "/api/orders",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"ROUTE_NOT_FOUND","message":"route not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, resp.Body.String())
		})
	}
}

func TestProductAPI_CollectAllValidation(t *testing.T) {
	h := newTestServer(t, false)

	resp := do(t, h, http.MethodPost, "/api/products", `{"name":"Bad!","retailPrice":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"code":"VALIDATION_FAILED","message":"validation error","errors":{
		"name":"No special characters allowed.",
		"retailPrice":"Retail Price must be >= $0.00"
	}}`, resp.Body.String())
}

func TestWebSearchForm(t *testing.T) {
	h := newTestServer(t, true)

	resp := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","description":"<b>bold</b>","retailPrice":19.99}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	postForm := func(name string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"name": {name}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)
		return resp
	}

	t.Run("Should render the empty form", func(t *testing.T) {
		resp := do(t, h, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), `<form method="post" action="/">`)
		assert.NotContains(t, resp.Body.String(), `class="error"`)
	})

	t.Run("Should render results for a valid search", func(t *testing.T) {
		resp := postForm("  wid ")
		assert.Equal(t, http.StatusOK, resp.Code)
		body := resp.Body.String()
		assert.Contains(t, body, "<td>Widget</td>")
		assert.Contains(t, body, "$19.99")
		assert.Contains(t, body, "&lt;b&gt;bold&lt;/b&gt;")
	})

	t.Run("Should render the form with the first violation", func(t *testing.T) {
		resp := postForm("")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Enter search text.")
		assert.NotContains(t, resp.Body.String(), "<table>")
	})

	t.Run("Should report no products", func(t *testing.T) {
		resp := postForm("gadget")
		assert.Contains(t, resp.Body.String(), "No products found.")
	})
}

func TestOperationalEndpoints(t *testing.T) {
	h := newTestServer(t, true)

	resp := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())

	do(t, h, http.MethodGet, "/api/products", "")
	resp = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `http_requests_total{method="GET",route="/api/products`)
	assert.Contains(t, resp.Body.String(), "http_request_duration_seconds")

	resp = do(t, h, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(correlationid.Header, "client-id-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-id-1", rec.Header().Get(correlationid.Header))
}

type panickingService struct {
	service.ProductService
}

func (panickingService) ListAll(context.Context) ([]dto.ProductView, error) {
	panic("boom")
}

type unhealthy struct{}

func (unhealthy) IsHealthy(context.Context) (bool, error) {
	return false, io.ErrUnexpectedEOF
}

func TestRecovererAndUnhealthyStore(t *testing.T) {
	h := apihttp.New(httpCfg, discardLogger(), newValidator(t, true), panickingService{}, unhealthy{}).Handler()

	resp := do(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_SERVER_ERROR","message":"an unknown error occurred"}`, resp.Body.String())

	resp = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.JSONEq(t, `{"code":"SERVICE_UNAVAILABLE","message":"service unavailable"}`, resp.Body.String())
}
