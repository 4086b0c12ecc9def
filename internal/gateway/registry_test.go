package gateway_test

import (
	"context"
	"testing"

	"github.com/sahelpay/sahelpay/internal/commission"
	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/internal/gateway"
	"github.com/sahelpay/sahelpay/internal/gateway/domain"
	"github.com/sahelpay/sahelpay/internal/gateway/mtn"
	"github.com/sahelpay/sahelpay/internal/gateway/orange"
	"github.com/sahelpay/sahelpay/internal/gateway/wave"
	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"github.com/stretchr/testify/require"
)

func testCalculator() *commission.Calculator {
	return commission.NewCalculator(config.NewStaticCommissionHolder(config.DefaultCommissionConfig()))
}

func testRegistry(sim domain.Simulator) *gateway.Registry {
	calc := testCalculator()
	return gateway.NewRegistry(
		orange.New(calc, sim),
		mtn.New(calc, sim),
		wave.New(calc, sim),
	)
}

func TestRegistryResolvesKnownProviders(t *testing.T) {
	registry := testRegistry(domain.AlwaysApprove())

	for _, provider := range []string{"orange_money", "mtn_money", "wave", " Orange_Money "} {
		gw, err := registry.Get(provider)
		require.NoError(t, err, provider)
		require.NotNil(t, gw)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := testRegistry(domain.AlwaysApprove())

	require.False(t, registry.ProviderExists("paypal"))
	_, err := registry.Get("paypal")
	require.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestChargeNormalizedAcrossProviders(t *testing.T) {
	registry := testRegistry(domain.AlwaysApprove())

	for _, provider := range registry.Providers() {
		gw, err := registry.Get(provider)
		require.NoError(t, err)

		result, err := gw.Charge(context.Background(), domain.ChargeRequest{
			Config:        domain.DefaultConfig(),
			Amount:        10_000,
			Currency:      "XOF",
			CustomerPhone: "+22670001122",
			TransactionID: txdomain.NewTransactionID(),
		})
		require.NoError(t, err, provider)
		require.NotEmpty(t, result.ProviderTransactionID)
		require.Equal(t, txdomain.StatusCompleted, result.Status)
		require.Equal(t, provider, result.PaymentMethod)
		require.NotEmpty(t, result.PaymentDetails["reference"])
		require.Equal(t, result.Commission.ProviderFee+result.Commission.PlatformFee, result.Commission.TotalFee)
	}
}

func TestChargeDeclineCarriesReason(t *testing.T) {
	registry := testRegistry(domain.AlwaysDecline("insufficient balance"))

	gw, err := registry.Get("orange_money")
	require.NoError(t, err)

	result, err := gw.Charge(context.Background(), domain.ChargeRequest{
		Config:        domain.DefaultConfig(),
		Amount:        5_000,
		Currency:      "XOF",
		CustomerPhone: "+22670001122",
		TransactionID: txdomain.NewTransactionID(),
	})
	require.NoError(t, err)
	require.Equal(t, txdomain.StatusFailed, result.Status)
	require.Equal(t, "insufficient balance", result.FailureReason)
}

func TestSequenceSimulator(t *testing.T) {
	sim := domain.Sequence(
		domain.Outcome{Status: txdomain.StatusCompleted},
		domain.Outcome{Status: txdomain.StatusFailed, FailureReason: "daily limit reached"},
	)

	first := sim()
	require.Equal(t, txdomain.StatusCompleted, first.Status)

	second := sim()
	require.Equal(t, txdomain.StatusFailed, second.Status)

	// Last outcome repeats once the sequence is exhausted.
	third := sim()
	require.Equal(t, txdomain.StatusFailed, third.Status)
}

func TestParseWebhookNormalizesStatuses(t *testing.T) {
	registry := testRegistry(domain.AlwaysApprove())

	tests := []struct {
		provider string
		payload  string
		wantID   string
		want     txdomain.Status
	}{
		{"orange_money", `{"transaction_id":"OM_123","status":"SUCCESSFUL"}`, "OM_123", txdomain.StatusCompleted},
		{"orange_money", `{"transaction_id":"OM_124","status":"FAILED","reason":"incorrect PIN"}`, "OM_124", txdomain.StatusFailed},
		{"mtn_money", `{"referenceId":"ref-1","status":"SUCCESSFUL"}`, "ref-1", txdomain.StatusCompleted},
		{"mtn_money", `{"referenceId":"ref-2","status":"FAILED","reason":{"message":"payer not found"}}`, "ref-2", txdomain.StatusFailed},
		{"wave", `{"id":"WAVE_1","payment_status":"succeeded"}`, "WAVE_1", txdomain.StatusCompleted},
		{"wave", `{"id":"WAVE_2","payment_status":"failed","last_payment_error":{"message":"expired"}}`, "WAVE_2", txdomain.StatusFailed},
	}

	for _, tt := range tests {
		gw, err := registry.Get(tt.provider)
		require.NoError(t, err)

		event, err := gw.ParseWebhook([]byte(tt.payload), nil)
		require.NoError(t, err, tt.payload)
		require.Equal(t, tt.wantID, event.ProviderTransactionID)
		require.Equal(t, tt.want, event.Status)
	}
}

func TestParseWebhookIgnoresUnknownEvents(t *testing.T) {
	registry := testRegistry(domain.AlwaysApprove())

	gw, err := registry.Get("wave")
	require.NoError(t, err)

	_, err = gw.ParseWebhook([]byte(`{"id":"WAVE_3","payment_status":"processing"}`), nil)
	require.ErrorIs(t, err, domain.ErrEventIgnored)

	_, err = gw.ParseWebhook([]byte(`not json`), nil)
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}
