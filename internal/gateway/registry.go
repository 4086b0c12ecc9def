package gateway

import (
	"strings"

	"github.com/sahelpay/sahelpay/internal/gateway/domain"
)

// Registry resolves a PaymentGateway from a provider identifier. An unknown
// key is the unsupported-provider case.
type Registry struct {
	gateways map[string]domain.PaymentGateway
}

func NewRegistry(gateways ...domain.PaymentGateway) *Registry {
	registry := &Registry{gateways: map[string]domain.PaymentGateway{}}
	for _, gw := range gateways {
		if gw == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(gw.Provider()))
		if provider == "" {
			continue
		}
		registry.gateways[provider] = gw
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := r.gateways[provider]
	return ok
}

func (r *Registry) Get(provider string) (domain.PaymentGateway, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	gw, ok := r.gateways[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return gw, nil
}

func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	providers := make([]string, 0, len(r.gateways))
	for provider := range r.gateways {
		providers = append(providers, provider)
	}
	return providers
}
