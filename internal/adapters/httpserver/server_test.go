package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energytrader/config"
	"energytrader/internal/app"
	"energytrader/internal/journal"
	"energytrader/internal/ledger"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		MaxEnergyAmount: 10000,
		MaxPricePerUnit: 1000,
	}
	ldg, err := ledger.New(map[string]float64{"alice": 100, "bob": 50})
	require.NoError(t, err)

	service, err := app.NewSettlementService(cfg, nopLogger{}, app.SystemClock{}, ldg, journal.New(), nil)
	require.NoError(t, err)

	return NewServer(service, nopLogger{}, NewMetrics())
}

func doRequest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func tradeBody(seller, buyer string, amount, price float64) map[string]any {
	return map[string]any{
		"seller_id":      seller,
		"buyer_id":       buyer,
		"energy_amount":  amount,
		"price_per_unit": price,
	}
}

func TestRoot(t *testing.T) {
	server := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "P2P Energy Trading API Running")
}

func TestExecuteTrade_Success(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/trade", tradeBody("alice", "bob", 40, 2.0))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TradeID)
	assert.Equal(t, "alice", resp.SellerID)
	assert.Equal(t, "bob", resp.BuyerID)
	assert.Equal(t, 80.0, resp.TotalPrice)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "Trade processed successfully", resp.Message)
	assert.Len(t, resp.TradeHash, 64)

	// Seller debited, buyer untouched.
	rec = doRequest(t, server, http.MethodGet, "/api/balance/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, 60.0, balance.EnergyBalance)
}

func TestExecuteTrade_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantDetail string
	}{
		{
			name:       "unknown user",
			body:       tradeBody("alice", "ghost-user", 10, 1),
			wantStatus: http.StatusBadRequest,
			wantDetail: "not registered",
		},
		{
			name:       "self trade",
			body:       tradeBody("alice", "alice", 10, 1),
			wantStatus: http.StatusBadRequest,
			wantDetail: "same entity",
		},
		{
			name:       "insufficient balance",
			body:       tradeBody("alice", "bob", 500, 1),
			wantStatus: http.StatusBadRequest,
			wantDetail: "enough energy",
		},
		{
			name:       "negative amount",
			body:       tradeBody("alice", "bob", -5, 1),
			wantStatus: http.StatusBadRequest,
			wantDetail: "energy amount",
		},
		{
			name:       "missing fields rejected by schema binding",
			body:       map[string]any{"seller_id": "alice"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short user id rejected by schema binding",
			body:       tradeBody("al", "bob", 10, 1),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t)
			rec := doRequest(t, server, http.MethodPost, "/api/trade", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantDetail != "" {
				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Contains(t, resp.Detail, tt.wantDetail)
			}
		})
	}
}

func TestExecuteTrade_FailureLeavesBalancesUnchanged(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/trade", tradeBody("alice", "bob", 500, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/all-balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balances))
	assert.Equal(t, map[string]float64{"alice": 100, "bob": 50}, balances)
}

func TestGetUserBalance_UnknownUserReadsZero(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/balance/ghost-user", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ghost-user", resp.UserID)
	assert.Equal(t, 0.0, resp.EnergyBalance)
}

func TestGetHistory(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	require.Equal(t, http.StatusOK,
		doRequest(t, server, http.MethodPost, "/api/trade", tradeBody("alice", "bob", 10, 1)).Code)
	require.Equal(t, http.StatusOK,
		doRequest(t, server, http.MethodPost, "/api/trade", tradeBody("bob", "alice", 5, 2)).Code)

	rec = doRequest(t, server, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []historyEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].SellerID)
	assert.Equal(t, "bob", entries[1].SellerID)
	assert.Len(t, entries[0].TradeHash, 64)

	// Filtered history.
	rec = doRequest(t, server, http.MethodGet, "/api/history?user_id=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 3; i++ {
		doRequest(t, server, http.MethodPost, "/api/trade", tradeBody("alice", "bob", 10, 1))
	}
	doRequest(t, server, http.MethodPost, "/api/trade", tradeBody("alice", "bob", 500, 1))

	rec := doRequest(t, server, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, fmt.Sprintf(`energytrader_settlements_total{outcome=%q} 3`, "completed"))
	assert.Contains(t, body, fmt.Sprintf(`energytrader_settlements_total{outcome=%q} 1`, "insufficient_balance"))
	assert.Contains(t, body, "energytrader_http_request_duration_seconds")
}
