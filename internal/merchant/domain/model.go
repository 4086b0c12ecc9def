package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Merchant struct {
	ID                snowflake.ID      `json:"id" gorm:"primaryKey"`
	BusinessName      string            `json:"business_name" gorm:"type:text;not null"`
	BusinessType      string            `json:"business_type" gorm:"type:text;not null;default:'individual'"`
	Description       string            `json:"description,omitempty" gorm:"type:text"`
	ContactEmail      string            `json:"contact_email,omitempty" gorm:"type:text"`
	IsActive          bool              `json:"is_active" gorm:"not null;default:true;index:ix_merchants_active_verified,priority:1"`
	IsVerified        bool              `json:"is_verified" gorm:"not null;default:false;index:ix_merchants_active_verified,priority:2"`
	Providers         datatypes.JSONMap `json:"providers,omitempty" gorm:"type:jsonb"`
	Balance           int64             `json:"balance" gorm:"not null;default:0"`
	TotalTransactions int64             `json:"total_transactions" gorm:"not null;default:0"`
	TotalRevenue      int64             `json:"total_revenue" gorm:"not null;default:0"`
	CreatedAt         time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"not null"`
}

func (Merchant) TableName() string { return "merchants" }

const (
	BusinessTypeIndividual  = "individual"
	BusinessTypeCompany     = "company"
	BusinessTypeAssociation = "association"
)
