package minmo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minmo-hq/offrampd/pkg/minmo"
	"github.com/stretchr/testify/require"
)

func newApi(serverURL string) *minmo.Api {
	return &minmo.Api{
		URL:     serverURL,
		APIKey:  "test-key",
		AgentID: "agent-1",
	}
}

func TestCreateSwapFillsDefaults(t *testing.T) {
	var received minmo.CreateSwapRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/swap", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(minmo.Swap{
			Id:         "swap-1",
			State:      "created",
			FiatAmount: received.FiatAmount,
		})
	}))
	defer server.Close()

	swap, err := newApi(server.URL).CreateSwap(minmo.CreateSwapRequest{
		FiatAmount:         "5000",
		FiatCurrency:       minmo.CurrencyKes,
		PaymentChannel:     "mpesa_phone",
		UserPaymentDetails: map[string]string{"phoneNumber": "0712345678"},
		BeneficiaryId:      "b1",
	})
	require.NoError(t, err)
	require.Equal(t, "swap-1", swap.Id)

	require.Equal(t, minmo.SwapTypeOfframp, received.Type)
	require.Equal(t, minmo.DefaultAgentMargin, received.AgentMargin)
	require.Equal(t, "agent-1", received.AgentId)
}

func TestCreateSwapServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"insufficient liquidity"}`))
	}))
	defer server.Close()

	_, err := newApi(server.URL).CreateSwap(minmo.CreateSwapRequest{FiatAmount: "5000"})
	require.EqualError(t, err, "insufficient liquidity")
}

func TestGetSwap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/swap-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"swap-1","state":"escrow_locked","fiatAmount":"5000"}`))
	}))
	defer server.Close()

	swap, err := newApi(server.URL).GetSwap("swap-1")
	require.NoError(t, err)
	require.Equal(t, "escrow_locked", swap.State)
}

func TestGetSwapBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newApi(server.URL).GetSwap("missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestGetAgentSwapsAcceptsAllListShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array":     `[{"id":"s1"},{"id":"s2"}]`,
		"data envelope":  `{"data":[{"id":"s1"},{"id":"s2"}]}`,
		"swaps envelope": `{"swaps":[{"id":"s1"},{"id":"s2"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/swap/agent/agent-1", r.URL.Path)
				require.Equal(t, "b1", r.URL.Query().Get("beneficiaryId"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer server.Close()

			swaps, err := newApi(server.URL).GetAgentSwaps("b1")
			require.NoError(t, err)
			require.Len(t, swaps, 2)
			require.Equal(t, "s1", swaps[0].Id)
			require.Equal(t, "s2", swaps[1].Id)
		})
	}
}

func TestGetAgentSwapsEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"unknown agent"}`))
	}))
	defer server.Close()

	_, err := newApi(server.URL).GetAgentSwaps("")
	require.EqualError(t, err, "unknown agent")
}

func TestGetAgentSwapsOmitsEmptyBeneficiaryFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("beneficiaryId"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	swaps, err := newApi(server.URL).GetAgentSwaps("")
	require.NoError(t, err)
	require.Empty(t, swaps)
}

func TestGetFxRateUppercasesThePair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fx/rates/BTC/KES", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"baseCurrency":"BTC","targetCurrency":"KES","rate":6250000}`))
	}))
	defer server.Close()

	rate, err := newApi(server.URL).GetFxRate(
		minmo.Currency("btc"), minmo.Currency("kes"),
	)
	require.NoError(t, err)
	require.Equal(t, float64(6250000), rate.Rate)
	require.Equal(t, minmo.CurrencyBtc, rate.BaseCurrency)
}
