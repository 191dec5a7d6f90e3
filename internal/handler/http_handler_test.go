package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetpay/withdraw-service/internal/metrics"
	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/provider"
	"github.com/fleetpay/withdraw-service/internal/repository"
	"github.com/fleetpay/withdraw-service/internal/withdraw"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAPI struct {
	drivers []model.Account
	profile map[string]any
}

func (s *stubAPI) Name() string { return "stub" }

func (s *stubAPI) SearchDrivers(ctx context.Context, query string) ([]model.Account, error) {
	return s.drivers, nil
}

func (s *stubAPI) DriverProfile(ctx context.Context, driverID int64) (map[string]any, error) {
	return s.profile, nil
}

func (s *stubAPI) TransactionTypes(ctx context.Context) ([]model.TransactionType, error) {
	return nil, nil
}

func (s *stubAPI) DriverPayments(ctx context.Context, driverID int64, perPage int) ([]map[string]any, error) {
	return []map[string]any{{"id": float64(1), "amount": 150.0}}, nil
}

func (s *stubAPI) PreviewWithdrawal(ctx context.Context, driverID int64, payload map[string]any) (*provider.CallResult, error) {
	return &provider.CallResult{Status: 200}, nil
}

func (s *stubAPI) CreateTransaction(ctx context.Context, driverID int64, verb string, payload map[string]any) (*provider.CallResult, error) {
	return &provider.CallResult{Status: 201, Body: map[string]any{"id": "tx-1"}}, nil
}

type stubRepo struct {
	results map[string]*model.WithdrawalResult
}

func (r *stubRepo) SaveResult(ctx context.Context, result *model.WithdrawalResult) error {
	if r.results == nil {
		r.results = map[string]*model.WithdrawalResult{}
	}
	r.results[result.ID] = result
	return nil
}

func (r *stubRepo) GetResult(ctx context.Context, id string) (*model.WithdrawalResult, error) {
	if res, ok := r.results[id]; ok {
		return res, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubRepo) ListResults(ctx context.Context, filter repository.ResultFilter) ([]*model.WithdrawalResult, error) {
	var out []*model.WithdrawalResult
	for _, res := range r.results {
		out = append(out, res)
	}
	return out, nil
}

func setupRouter(t *testing.T, api *stubAPI, repo *stubRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry, "test")
	svc := withdraw.NewService(api, repo, zap.NewNop(), m, "", 0)

	router := gin.New()
	NewHTTPHandler(svc, repo, registry, zap.NewNop()).SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(t, &stubAPI{}, &stubRepo{})

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = doRequest(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateWithdrawal_Success(t *testing.T) {
	api := &stubAPI{
		drivers: []model.Account{{ID: 7, Phone: "89137619949", Balance: decimal.NewFromInt(200)}},
		profile: map[string]any{"cards": []any{map[string]any{"id": float64(42)}}},
	}
	repo := &stubRepo{}
	router := setupRouter(t, api, repo)

	w := doRequest(router, http.MethodPost, "/api/withdrawals", map[string]any{
		"phone":  "89137619949",
		"amount": 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result model.WithdrawalResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, model.ReasonCreated, result.Reason)
	assert.Contains(t, repo.results, result.ID)
}

func TestCreateWithdrawal_FailedRunIsStill200(t *testing.T) {
	router := setupRouter(t, &stubAPI{}, &stubRepo{})

	w := doRequest(router, http.MethodPost, "/api/withdrawals", map[string]any{
		"phone":  "89137619949",
		"amount": 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result model.WithdrawalResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.OK)
	assert.Equal(t, model.ReasonDriverNotFound, result.Reason)
}

func TestCreateWithdrawal_MissingPhoneIs400(t *testing.T) {
	router := setupRouter(t, &stubAPI{}, &stubRepo{})

	w := doRequest(router, http.MethodPost, "/api/withdrawals", map[string]any{"amount": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetWithdrawal(t *testing.T) {
	repo := &stubRepo{}
	_ = repo.SaveResult(context.Background(), &model.WithdrawalResult{ID: "abc", OK: true})
	router := setupRouter(t, &stubAPI{}, repo)

	w := doRequest(router, http.MethodGet, "/api/withdrawals/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/withdrawals/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListWithdrawals_FilterValidation(t *testing.T) {
	router := setupRouter(t, &stubAPI{}, &stubRepo{})

	w := doRequest(router, http.MethodGet, "/api/withdrawals?ok=notabool", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/withdrawals?ok=true&limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBalance(t *testing.T) {
	api := &stubAPI{
		drivers: []model.Account{{ID: 7, Phone: "89137619949", Balance: decimal.RequireFromString("123.45")}},
	}
	router := setupRouter(t, api, &stubRepo{})

	w := doRequest(router, http.MethodGet, "/api/drivers/89137619949/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "123.45")

	w = doRequest(router, http.MethodGet, "/api/drivers/89990000000/balance", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAntifraud(t *testing.T) {
	api := &stubAPI{
		drivers: []model.Account{{ID: 7, Phone: "89137619949"}},
		profile: map[string]any{"mode": "antifraud_hold"},
	}
	router := setupRouter(t, api, &stubRepo{})

	w := doRequest(router, http.MethodGet, "/api/drivers/89137619949/antifraud", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"antifraud":true`)
}

func TestGetPayments(t *testing.T) {
	api := &stubAPI{drivers: []model.Account{{ID: 7, Phone: "89137619949"}}}
	router := setupRouter(t, api, &stubRepo{})

	w := doRequest(router, http.MethodGet, "/api/drivers/89137619949/payments?per_page=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "payments")

	w = doRequest(router, http.MethodGet, "/api/drivers/89137619949/payments?per_page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
