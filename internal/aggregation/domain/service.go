package domain

import (
	"context"
	"errors"

	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"gorm.io/datatypes"
)

// CreateRequest is the batch submission. Payments are attempted in the order
// given here.
type CreateRequest struct {
	Payments      []PaymentItem
	Provider      string
	CustomerPhone string
	CustomerEmail string
	CustomerName  string
	MerchantID    string
	ClientIP      string
	UserAgent     string
}

// Summary is the count-based digest returned alongside the parent record.
type Summary struct {
	Total       int    `json:"total"`
	Success     int    `json:"success"`
	Failed      int    `json:"failed"`
	TotalAmount int64  `json:"total_amount"`
	Status      Status `json:"status"`
}

// CreateResponse mirrors the original envelope: Success reflects only a fully
// completed batch; partial and failed batches report Success=false even though
// the call itself succeeded.
type CreateResponse struct {
	Aggregation  *Aggregation           `json:"aggregation"`
	Transactions []txdomain.Transaction `json:"transactions"`
	Logs         []ActivityLog          `json:"logs"`
	Summary      Summary                `json:"summary"`
	Success      bool                   `json:"success"`
	Message      string                 `json:"message"`
}

type GetResponse struct {
	Aggregation  *Aggregation           `json:"aggregation"`
	Transactions []txdomain.Transaction `json:"transactions"`
	Logs         []ActivityLog          `json:"logs"`
}

type LogsResponse struct {
	AggregationID string        `json:"aggregation_id"`
	Status        Status        `json:"status"`
	Logs          []ActivityLog `json:"logs"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (CreateResponse, error)
	Get(ctx context.Context, ref string) (GetResponse, error)
	Logs(ctx context.Context, ref string) (LogsResponse, error)
	ListByPhone(ctx context.Context, phone string) ([]Aggregation, error)
}

// TransactionRecorder persists one gateway outcome as a transaction record on
// the engine's behalf. Satisfied by the transaction service.
type TransactionRecorder interface {
	CreateFromResult(
		ctx context.Context,
		merchant *merchantdomain.Merchant,
		provider string,
		transactionID string,
		req txdomain.ProcessRequest,
		description string,
		result *gatewaydomain.ChargeResult,
		metadata datatypes.JSONMap,
	) (*txdomain.Transaction, error)
}

var (
	ErrNoPayments      = errors.New("no_payments")
	ErrInvalidPayment  = errors.New("invalid_payment")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidProvider = errors.New("invalid_provider")
	ErrMissingPhone    = errors.New("missing_phone")
	ErrMissingRef      = errors.New("missing_ref")
	ErrNotFound        = errors.New("aggregation_not_found")
)
