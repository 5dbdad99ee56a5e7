package minmo

import "time"

const (
	CurrencyBtc Currency = "BTC"
	CurrencyKes Currency = "KES"
	CurrencyUsd Currency = "USD"
)

type Currency string

// SwapTypeOfframp is the only swap direction the service currently
// supports: Bitcoin into fiat.
const SwapTypeOfframp = "offramp"

// DefaultAgentMargin is the agent fee in basis points applied when the
// caller does not set one.
const DefaultAgentMargin = 600

// Swap is a snapshot of one Bitcoin-to-fiat conversion as reported by
// the swap service. Fiat amounts are decimal strings, bitcoin amounts
// are integer strings denominated in satoshis.
type Swap struct {
	Id                  string         `json:"id"`
	Reference           string         `json:"reference"`
	Type                string         `json:"type"`
	State               string         `json:"state"`
	FiatAmount          string         `json:"fiatAmount"`
	FiatCurrency        Currency       `json:"fiatCurrency"`
	BitcoinAmount       string         `json:"bitcoinAmount"`
	ExchangeRate        string         `json:"exchangeRate"`
	PaymentChannel      string         `json:"paymentChannel"`
	EscrowInvoice       string         `json:"escrowInvoice,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UserPaymentDetails  map[string]any `json:"userPaymentDetails,omitempty"`
	AgentPaymentDetails map[string]any `json:"agentPaymentDetails,omitempty"`

	Error string `json:"error,omitempty"`
}

type CreateSwapRequest struct {
	Type               string            `json:"type"`
	FiatAmount         string            `json:"fiatAmount"`
	FiatCurrency       Currency          `json:"fiatCurrency"`
	PaymentChannel     string            `json:"paymentChannel"`
	UserPaymentDetails map[string]string `json:"userPaymentDetails"`
	AgentId            string            `json:"agentId,omitempty"`
	AgentMargin        int               `json:"agentMargin"`
	BeneficiaryId      string            `json:"beneficiaryId,omitempty"`
	Metadata           map[string]any    `json:"metadata,omitempty"`
}

type FxRateResponse struct {
	BaseCurrency   Currency  `json:"baseCurrency"`
	TargetCurrency Currency  `json:"targetCurrency"`
	Rate           float64   `json:"rate"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source,omitempty"`

	Error string `json:"error,omitempty"`
}
