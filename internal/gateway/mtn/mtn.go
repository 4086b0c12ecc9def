package mtn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelpay/sahelpay/internal/commission"
	"github.com/sahelpay/sahelpay/internal/gateway/domain"
	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
)

const providerName = "mtn_money"

// Gateway simulates the MTN Mobile Money collection API.
type Gateway struct {
	calc *commission.Calculator
	sim  domain.Simulator
}

func New(calc *commission.Calculator, sim domain.Simulator) *Gateway {
	return &Gateway{calc: calc, sim: sim}
}

func (g *Gateway) Provider() string {
	return providerName
}

func (g *Gateway) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	fees, err := g.calc.Compute(providerName, req.Amount)
	if err != nil {
		return nil, err
	}

	// MTN MoMo references are caller-generated UUIDs.
	referenceID := uuid.NewString()
	outcome := g.sim()

	result := &domain.ChargeResult{
		ProviderTransactionID: referenceID,
		Status:                outcome.Status,
		PaymentMethod:         providerName,
		PaymentDetails: map[string]any{
			"reference":                fmt.Sprintf("MOMO_%s", referenceID),
			"financial_transaction_id": referenceID,
			"payer":                    req.CustomerPhone,
			"processed_at":             time.Now().UTC().Format(time.RFC3339),
		},
		Commission: fees,
	}
	if outcome.Status == txdomain.StatusFailed {
		result.FailureReason = outcome.FailureReason
	}

	return result, nil
}

func (g *Gateway) Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	return &domain.RefundResult{
		RefundID: fmt.Sprintf("MOMO_REFUND_%s", uuid.NewString()),
		Status:   txdomain.StatusRefunded,
		Amount:   req.Amount,
	}, nil
}

type webhookPayload struct {
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
	Reason      struct {
		Message string `json:"message"`
	} `json:"reason"`
}

func (g *Gateway) ParseWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ReferenceID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	switch strings.ToUpper(strings.TrimSpace(event.Status)) {
	case "SUCCESSFUL":
		return &domain.WebhookEvent{
			ProviderTransactionID: event.ReferenceID,
			Status:                txdomain.StatusCompleted,
		}, nil
	case "FAILED":
		return &domain.WebhookEvent{
			ProviderTransactionID: event.ReferenceID,
			Status:                txdomain.StatusFailed,
			FailureReason:         event.Reason.Message,
		}, nil
	default:
		return nil, domain.ErrEventIgnored
	}
}
