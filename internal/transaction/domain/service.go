package domain

import (
	"context"
	"errors"

	"github.com/sahelpay/sahelpay/pkg/db/pagination"
)

// ProcessRequest is the single-payment path input.
type ProcessRequest struct {
	Provider      string
	Amount        int64
	CustomerPhone string
	CustomerEmail string
	CustomerName  string
	Description   string
	MerchantID    string
}

type ProcessResponse struct {
	Transaction *Transaction `json:"transaction"`
	Success     bool         `json:"success"`
}

type RefundRequest struct {
	TransactionID string
	Amount        int64
	Reason        string
}

type WebhookResult struct {
	TransactionID string `json:"transaction_id"`
	Status        Status `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type ListRequest struct {
	pagination.Pagination
	MerchantID string
	Provider   string
	Status     string
}

type ListResponse struct {
	pagination.PageInfo
	Transactions []Transaction `json:"transactions"`
}

type Service interface {
	Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error)
	Refund(ctx context.Context, req RefundRequest) (*Transaction, error)
	HandleWebhook(ctx context.Context, provider string, payload []byte, headers map[string][]string) (*WebhookResult, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidProvider = errors.New("invalid_provider")
	ErrMissingPhone    = errors.New("missing_phone")
	ErrNotFound        = errors.New("transaction_not_found")
	ErrNotCompleted    = errors.New("transaction_not_completed")
	ErrAlreadyRefunded = errors.New("transaction_already_refunded")
	ErrInvalidRefund   = errors.New("invalid_refund")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidMerchant = errors.New("invalid_merchant")
)
