package domain

import (
	"context"
	"errors"
	"net/http"

	"github.com/sahelpay/sahelpay/internal/commission"
	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
)

// Config is the per-merchant provider configuration handed to a gateway call.
// When a merchant has no explicit configuration, a permissive default is used.
type Config struct {
	APIKey    string `json:"api_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	Enabled   bool   `json:"enabled"`
}

func DefaultConfig() Config {
	return Config{Enabled: true}
}

type ChargeRequest struct {
	Config        Config
	Amount        int64
	Currency      string
	CustomerPhone string
	CustomerEmail string
	CustomerName  string
	Description   string
	TransactionID string
}

// ChargeResult is the normalized outcome of a provider call, identical in
// shape regardless of provider.
type ChargeResult struct {
	ProviderTransactionID string
	Status                txdomain.Status
	PaymentMethod         string
	PaymentDetails        map[string]any
	Commission            commission.Breakdown
	FailureReason         string
}

type RefundRequest struct {
	Config                Config
	ProviderTransactionID string
	Amount                int64
}

type RefundResult struct {
	RefundID string
	Status   txdomain.Status
	Amount   int64
}

// WebhookEvent is an inbound provider notification normalized to the shared
// status vocabulary. Locating the matching record and applying the transition
// is the caller's job.
type WebhookEvent struct {
	ProviderTransactionID string
	Status                txdomain.Status
	FailureReason         string
}

// PaymentGateway is one payment rail. Implementations here are simulated
// stand-ins for the real operator SDKs.
type PaymentGateway interface {
	Provider() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error)
}

var (
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrEventIgnored     = errors.New("event_ignored")
)
