package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
)

type CreateMerchantRequest struct {
	BusinessName string
	BusinessType string
	Description  string
	ContactEmail string
	IsActive     bool
	IsVerified   bool
	Providers    map[string]gatewaydomain.Config
}

type Service interface {
	Create(ctx context.Context, req CreateMerchantRequest) (Merchant, error)
	GetByID(ctx context.Context, id string) (Merchant, error)
	List(ctx context.Context) ([]Merchant, error)
	// Resolve applies the selection policy: explicit id when given, otherwise
	// the first active (and, in production, verified) merchant.
	Resolve(ctx context.Context, id string) (*Merchant, error)
	// ProviderConfig returns the merchant's configuration for provider, or a
	// permissive default when the merchant has none.
	ProviderConfig(merchant *Merchant, provider string) gatewaydomain.Config
	RecordSale(ctx context.Context, id snowflake.ID, netAmount int64) error
	RecordRefund(ctx context.Context, id snowflake.ID, netAmount int64) error
}

var (
	ErrInvalidBusinessName = errors.New("invalid_business_name")
	ErrInvalidBusinessType = errors.New("invalid_business_type")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("merchant_not_found")
	ErrNoMerchantAvailable = errors.New("no_merchant_available")
)
