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
	StatusPartial    Status = "partial"
)

// Terminal reports whether the batch has finished processing.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial:
		return true
	default:
		return false
	}
}

// Sub-payment categories accepted on submission.
const (
	CategoryWater       = "water"
	CategoryElectricity = "electricity"
	CategoryInternet    = "internet"
	CategoryPhone       = "phone"
	CategoryPurchase    = "purchase"
	CategoryOther       = "other"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryWater, CategoryElectricity, CategoryInternet, CategoryPhone, CategoryPurchase, CategoryOther:
		return true
	default:
		return false
	}
}

// PaymentItem is one line item of the submitted batch, stored verbatim as an
// immutable snapshot; it is never re-derived from transaction records.
type PaymentItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference,omitempty"`
	Category    string `json:"category"`
}

// Customer is the contact snapshot stored on the parent record.
type Customer struct {
	Phone string `json:"phone" gorm:"column:customer_phone;type:text;not null;index"`
	Email string `json:"email" gorm:"column:customer_email;type:text"`
	Name  string `json:"name" gorm:"column:customer_name;type:text"`
}

// Aggregation is the parent record for one batch of bill payments. The
// activity log lives in its own table, ordered by seq.
type Aggregation struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	AggregationID  string            `json:"aggregation_id" gorm:"type:text;not null;uniqueIndex"`
	MerchantID     snowflake.ID      `json:"merchant_id,omitempty" gorm:"index"`
	Customer       Customer          `json:"customer" gorm:"embedded"`
	Payments       datatypes.JSON    `json:"payments" gorm:"type:jsonb;not null"`
	TotalAmount    int64             `json:"total_amount" gorm:"not null"`
	Provider       string            `json:"provider" gorm:"type:text;not null"`
	Status         Status            `json:"status" gorm:"type:text;not null;index"`
	TransactionIDs datatypes.JSON    `json:"transaction_ids" gorm:"type:jsonb"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	FailedAt       *time.Time        `json:"failed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;index"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null"`
}

func (Aggregation) TableName() string { return "aggregations" }

// Activity-log severities.
const (
	LogInfo    = "info"
	LogSuccess = "success"
	LogWarning = "warning"
	LogError   = "error"
)

// Log action tags.
const (
	ActionCreation         = "CREATION"
	ActionMerchantSelected = "MERCHANT_SELECTED"
	ActionProcessing       = "PROCESSING"
	ActionPaymentStart     = "PAYMENT_START"
	ActionPaymentSuccess   = "PAYMENT_SUCCESS"
	ActionPaymentFailed    = "PAYMENT_FAILED"
	ActionPaymentError     = "PAYMENT_ERROR"
	ActionCompleted        = "COMPLETED"
	ActionFailed           = "FAILED"
	ActionPartial          = "PARTIAL"
	ActionError            = "ERROR"
)

// ActivityLog is one append-only entry in an aggregation's audit narrative.
// Entries are only ever inserted, never updated or deleted.
type ActivityLog struct {
	ID            snowflake.ID `json:"-" gorm:"primaryKey"`
	AggregationID snowflake.ID `json:"-" gorm:"not null;index:idx_aggregation_logs_ref"`
	Seq           int          `json:"-" gorm:"not null;index:idx_aggregation_logs_ref"`
	Timestamp     time.Time    `json:"timestamp" gorm:"not null"`
	Action        string       `json:"action" gorm:"type:text;not null"`
	Details       string       `json:"details" gorm:"type:text;not null"`
	Status        string       `json:"status" gorm:"type:text;not null"`
}

func (ActivityLog) TableName() string { return "aggregation_logs" }

// NewAggregationID generates a globally unique business identifier.
func NewAggregationID() string {
	return fmt.Sprintf("AGG_%s", ulid.MustNew(ulid.Now(), rand.Reader).String())
}
