package orange

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sahelpay/sahelpay/internal/commission"
	"github.com/sahelpay/sahelpay/internal/gateway/domain"
	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
)

const providerName = "orange_money"

// Gateway simulates the Orange Money WebPay rail.
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

	reference := newReference("OM")
	outcome := g.sim()

	result := &domain.ChargeResult{
		ProviderTransactionID: reference,
		Status:                outcome.Status,
		PaymentMethod:         providerName,
		PaymentDetails: map[string]any{
			"reference":    reference,
			"pay_token":    fmt.Sprintf("OMPAY_%s", strings.ToLower(reference)),
			"phone":        req.CustomerPhone,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
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
		RefundID: newReference("OM_REFUND"),
		Status:   txdomain.StatusRefunded,
		Amount:   req.Amount,
	}, nil
}

type webhookPayload struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

func (g *Gateway) ParseWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.TransactionID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	switch strings.ToUpper(strings.TrimSpace(event.Status)) {
	case "SUCCESSFUL", "SUCCESS":
		return &domain.WebhookEvent{
			ProviderTransactionID: event.TransactionID,
			Status:                txdomain.StatusCompleted,
		}, nil
	case "FAILED":
		return &domain.WebhookEvent{
			ProviderTransactionID: event.TransactionID,
			Status:                txdomain.StatusFailed,
			FailureReason:         event.Reason,
		}, nil
	default:
		return nil, domain.ErrEventIgnored
	}
}

func newReference(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, ulid.MustNew(ulid.Now(), rand.Reader).String())
}
