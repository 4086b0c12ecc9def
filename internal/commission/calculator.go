package commission

import (
	"errors"
	"strings"

	"github.com/sahelpay/sahelpay/internal/config"
)

var (
	ErrUnknownProvider = errors.New("unknown_provider")
	ErrInvalidAmount   = errors.New("invalid_amount")
)

// Breakdown is the fee split for one payment. All values are XOF minor units.
type Breakdown struct {
	ProviderFee int64 `json:"provider_fee"`
	PlatformFee int64 `json:"platform_fee"`
	TotalFee    int64 `json:"total_fee"`
}

// Calculator maps (provider, amount) to a fee breakdown. Rates come from the
// commission config holder, so a rate change never touches this code.
type Calculator struct {
	rates *config.CommissionHolder
}

func NewCalculator(rates *config.CommissionHolder) *Calculator {
	return &Calculator{rates: rates}
}

// Compute returns the fee breakdown for amount through provider.
// TotalFee is always ProviderFee + PlatformFee; it is not capped at amount.
func (c *Calculator) Compute(provider string, amount int64) (Breakdown, error) {
	if amount <= 0 {
		return Breakdown{}, ErrInvalidAmount
	}

	provider = strings.ToLower(strings.TrimSpace(provider))
	cfg := c.rates.Get()
	rateBp, ok := cfg.ProviderRatesBp[provider]
	if !ok {
		return Breakdown{}, ErrUnknownProvider
	}

	providerFee := amount * rateBp / 10_000
	platformFee := amount * cfg.PlatformRateBp / 10_000

	return Breakdown{
		ProviderFee: providerFee,
		PlatformFee: platformFee,
		TotalFee:    providerFee + platformFee,
	}, nil
}

// Supports reports whether provider has a configured commission rate.
func (c *Calculator) Supports(provider string) bool {
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := c.rates.Get().ProviderRatesBp[provider]
	return ok
}
