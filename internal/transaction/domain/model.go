package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further automatic transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	default:
		return false
	}
}

// Customer is the contact snapshot stored on each record.
type Customer struct {
	Phone string `json:"phone" gorm:"column:customer_phone;type:text;index"`
	Email string `json:"email" gorm:"column:customer_email;type:text"`
	Name  string `json:"name" gorm:"column:customer_name;type:text"`
}

// Transaction is one payment attempt against a provider.
type Transaction struct {
	ID                    snowflake.ID      `json:"id" gorm:"primaryKey"`
	TransactionID         string            `json:"transaction_id" gorm:"type:text;not null;uniqueIndex"`
	MerchantID            snowflake.ID      `json:"merchant_id" gorm:"not null;index"`
	Provider              string            `json:"provider" gorm:"type:text;not null;index"`
	ProviderTransactionID string            `json:"provider_transaction_id" gorm:"type:text;index"`
	Amount                int64             `json:"amount" gorm:"not null"`
	Currency              string            `json:"currency" gorm:"type:text;not null"`
	Status                Status            `json:"status" gorm:"type:text;not null;index"`
	Customer              Customer          `json:"customer" gorm:"embedded"`
	Description           string            `json:"description" gorm:"type:text"`
	Metadata              datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	ProviderFee           int64             `json:"provider_fee" gorm:"not null;default:0"`
	PlatformFee           int64             `json:"platform_fee" gorm:"not null;default:0"`
	TotalFee              int64             `json:"total_fee" gorm:"not null;default:0"`
	NetAmount             int64             `json:"net_amount" gorm:"not null"`
	PaymentMethod         string            `json:"payment_method" gorm:"type:text"`
	PaymentDetails        datatypes.JSONMap `json:"payment_details,omitempty" gorm:"type:jsonb"`
	FailureReason         string            `json:"failure_reason,omitempty" gorm:"type:text"`
	RefundID              string            `json:"refund_id,omitempty" gorm:"type:text"`
	RefundedAmount        int64             `json:"refunded_amount" gorm:"not null;default:0"`
	RefundReason          string            `json:"refund_reason,omitempty" gorm:"type:text"`
	RefundedAt            *time.Time        `json:"refunded_at,omitempty"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	FailedAt              *time.Time        `json:"failed_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt             time.Time         `json:"updated_at" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

// Metadata keys linking a record back to the owning aggregation.
const (
	MetadataKeyAggregationID = "aggregation_id"
	MetadataKeyPaymentIndex  = "payment_index"
	MetadataKeyCategory      = "category"
	MetadataKeyReference     = "reference"
)

// NewTransactionID generates a globally unique business identifier.
func NewTransactionID() string {
	return fmt.Sprintf("TXN_%s", ulid.MustNew(ulid.Now(), rand.Reader).String())
}
