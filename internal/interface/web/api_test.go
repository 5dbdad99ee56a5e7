package web_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minmo-hq/offrampd/internal/core/application"
	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/minmo-hq/offrampd/internal/infrastructure/db"
	"github.com/minmo-hq/offrampd/internal/interface/web"
	"github.com/minmo-hq/offrampd/pkg/minmo"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	mu      sync.Mutex
	nextId  int
	swaps   map[string]minmo.Swap
	rateErr error
}

func newStubClient() *stubClient {
	return &stubClient{swaps: make(map[string]minmo.Swap)}
}

func (c *stubClient) CreateSwap(request minmo.CreateSwapRequest) (*minmo.Swap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextId++
	swap := minmo.Swap{
		Id:           fmt.Sprintf("swap-%d", c.nextId),
		State:        string(domain.StateCreated),
		Type:         request.Type,
		FiatAmount:   request.FiatAmount,
		FiatCurrency: request.FiatCurrency,
		CreatedAt:    time.Now(),
	}
	c.swaps[swap.Id] = swap
	return &swap, nil
}

func (c *stubClient) GetSwap(swapId string) (*minmo.Swap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	swap, ok := c.swaps[swapId]
	if !ok {
		return nil, errors.New("swap not found")
	}
	return &swap, nil
}

func (c *stubClient) GetAgentSwaps(beneficiaryId string) ([]minmo.Swap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]minmo.Swap, 0, len(c.swaps))
	for _, swap := range c.swaps {
		out = append(out, swap)
	}
	return out, nil
}

func (c *stubClient) GetFxRate(base, target minmo.Currency) (*minmo.FxRateResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rateErr != nil {
		return nil, c.rateErr
	}
	return &minmo.FxRateResponse{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           6250000,
	}, nil
}

func newTestServer(t *testing.T) (http.Handler, *stubClient) {
	t.Helper()

	repoManager, err := db.NewService(db.ServiceConfig{
		DbType:   "badger",
		DbConfig: []any{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	client := newStubClient()
	appSvc, err := application.NewService(
		application.BuildInfo{Version: "test"}, repoManager, nil, client, nil,
		minmo.CurrencyKes, 10*time.Millisecond, time.Second,
	)
	require.NoError(t, err)

	return web.NewService(web.Config{DisableTelemetry: true}, appSvc), client
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCreateSwapEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, http.MethodPost, "/api/swap", gin.H{
		"fiatAmount":   "5000",
		"paymentRail":  "mpesa_phone",
		"phoneNumber":  "0712345678",
		"exchangeRate": 6250000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Swap      minmo.Swap `json:"swap"`
		Branch    string     `json:"branch"`
		Step      int        `json:"step"`
		StepLabel string     `json:"stepLabel"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "created", resp.Swap.State)
	require.Equal(t, "in_progress", resp.Branch)
	require.Equal(t, 0, resp.Step)

	// the reference is cached, so the beneficiary view counts it
	w = doJSON(t, handler, http.MethodGet, "/api/beneficiary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var beneficiary struct {
		BeneficiaryId string `json:"beneficiaryId"`
		SwapCount     int    `json:"swapCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &beneficiary))
	require.NotEmpty(t, beneficiary.BeneficiaryId)
	require.Equal(t, 1, beneficiary.SwapCount)
}

func TestCreateSwapEndpointValidation(t *testing.T) {
	handler, _ := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing amount", gin.H{
			"paymentRail": "mpesa_phone", "phoneNumber": "0712345678", "exchangeRate": 6250000,
		}},
		{"zero amount", gin.H{
			"fiatAmount": "0", "paymentRail": "mpesa_phone",
			"phoneNumber": "0712345678", "exchangeRate": 6250000,
		}},
		{"bad phone", gin.H{
			"fiatAmount": "5000", "paymentRail": "mpesa_phone",
			"phoneNumber": "12345", "exchangeRate": 6250000,
		}},
		{"missing phone for mobile money", gin.H{
			"fiatAmount": "5000", "paymentRail": "mpesa_phone", "exchangeRate": 6250000,
		}},
		{"unknown rail", gin.H{
			"fiatAmount": "5000", "paymentRail": "paypal", "exchangeRate": 6250000,
		}},
		{"bank transfer without account", gin.H{
			"fiatAmount": "5000", "paymentRail": "bank_transfer",
			"bankName": "Equity", "exchangeRate": 6250000,
		}},
		{"missing rate", gin.H{
			"fiatAmount": "5000", "paymentRail": "mpesa_phone", "phoneNumber": "0712345678",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, handler, http.MethodPost, "/api/swap", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestSwapHistoryEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, http.MethodGet, "/api/swaps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data  []json.RawMessage `json:"data"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Zero(t, list.Count)

	w = doJSON(t, handler, http.MethodPost, "/api/swap", gin.H{
		"fiatAmount":    "5000",
		"paymentRail":   "bank_transfer",
		"bankName":      "Equity",
		"accountNumber": "123456789",
		"exchangeRate":  6250000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Swap minmo.Swap `json:"swap"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, handler, http.MethodGet, "/api/swaps?filter=pending&sort=newest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)

	w = doJSON(t, handler, http.MethodDelete, "/api/swaps/"+created.Swap.Id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, handler, http.MethodDelete, "/api/swaps/"+created.Swap.Id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, handler, http.MethodDelete, "/api/swaps", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateEndpoint(t *testing.T) {
	handler, client := newTestServer(t)

	w := doJSON(t, handler, http.MethodGet, "/api/rates/btc/kes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rate minmo.FxRateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rate))
	require.Equal(t, float64(6250000), rate.Rate)

	client.rateErr = errors.New("upstream down")
	w = doJSON(t, handler, http.MethodGet, "/api/rates/btc/usd", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRateEndpointConversions(t *testing.T) {
	handler, _ := newTestServer(t)

	// fiat to sats, floored at the served rate
	w := doJSON(t, handler, http.MethodGet, "/api/rates/btc/kes?amount=5000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var converted struct {
		Rate          minmo.FxRateResponse `json:"rate"`
		FiatAmount    string               `json:"fiatAmount"`
		FiatDisplay   string               `json:"fiatDisplay"`
		SatoshiAmount int64                `json:"satoshiAmount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &converted))
	require.Equal(t, float64(6250000), converted.Rate.Rate)
	require.Equal(t, "5000", converted.FiatAmount)
	require.Equal(t, "5,000", converted.FiatDisplay)
	require.Equal(t, int64(80000), converted.SatoshiAmount)

	// sats to fiat, rounded to two decimals
	w = doJSON(t, handler, http.MethodGet, "/api/rates/btc/kes?sats=80000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &converted))
	require.Equal(t, "5000.00", converted.FiatAmount)
	require.Equal(t, "5,000.00", converted.FiatDisplay)
	require.Equal(t, int64(80000), converted.SatoshiAmount)

	for _, path := range []string{
		"/api/rates/btc/kes?amount=0",
		"/api/rates/btc/kes?amount=abc",
		"/api/rates/btc/kes?sats=-1",
		"/api/rates/btc/kes?sats=many",
	} {
		w = doJSON(t, handler, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestResetBeneficiaryEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, http.MethodGet, "/api/beneficiary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before struct {
		BeneficiaryId string `json:"beneficiaryId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))

	w = doJSON(t, handler, http.MethodPost, "/api/beneficiary/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after struct {
		BeneficiaryId string `json:"beneficiaryId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	require.NotEqual(t, before.BeneficiaryId, after.BeneficiaryId)
}

func TestInfoEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, http.MethodGet, "/api/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		Version      string `json:"version"`
		FiatCurrency string `json:"fiatCurrency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.Equal(t, "test", info.Version)
	require.Equal(t, "KES", info.FiatCurrency)
}
