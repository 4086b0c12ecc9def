package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agg *Aggregation) error
	Update(ctx context.Context, db *gorm.DB, agg *Aggregation) error
	// FindByRef resolves either the internal snowflake id or the AGG_
	// business identifier.
	FindByRef(ctx context.Context, db *gorm.DB, ref string) (*Aggregation, error)
	ListByPhone(ctx context.Context, db *gorm.DB, phone string) ([]*Aggregation, error)
	AppendLog(ctx context.Context, db *gorm.DB, entry *ActivityLog) error
	Logs(ctx context.Context, db *gorm.DB, aggregationID snowflake.ID) ([]ActivityLog, error)
}
