package wave

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

const providerName = "wave"

// Gateway simulates the Wave checkout API.
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

	sessionID := fmt.Sprintf("WAVE_%s", ulid.MustNew(ulid.Now(), rand.Reader).String())
	outcome := g.sim()

	result := &domain.ChargeResult{
		ProviderTransactionID: sessionID,
		Status:                outcome.Status,
		PaymentMethod:         providerName,
		PaymentDetails: map[string]any{
			"reference":    sessionID,
			"checkout_url": fmt.Sprintf("https://pay.wave.com/c/%s", sessionID),
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
		RefundID: fmt.Sprintf("WAVE_REFUND_%s", ulid.MustNew(ulid.Now(), rand.Reader).String()),
		Status:   txdomain.StatusRefunded,
		Amount:   req.Amount,
	}, nil
}

type webhookPayload struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
	LastError     struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

func (g *Gateway) ParseWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	switch strings.ToLower(strings.TrimSpace(event.PaymentStatus)) {
	case "succeeded", "completed":
		return &domain.WebhookEvent{
			ProviderTransactionID: event.ID,
			Status:                txdomain.StatusCompleted,
		}, nil
	case "failed":
		return &domain.WebhookEvent{
			ProviderTransactionID: event.ID,
			Status:                txdomain.StatusFailed,
			FailureReason:         event.LastError.Message,
		}, nil
	default:
		return nil, domain.ErrEventIgnored
	}
}
