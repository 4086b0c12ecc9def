package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/aggregation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, agg *domain.Aggregation) error {
	return db.WithContext(ctx).Create(agg).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, agg *domain.Aggregation) error {
	return db.WithContext(ctx).Save(agg).Error
}

func (r *repo) FindByRef(ctx context.Context, db *gorm.DB, ref string) (*domain.Aggregation, error) {
	stmt := db.WithContext(ctx)
	if id, err := snowflake.ParseString(ref); err == nil && id != 0 {
		stmt = stmt.Where("id = ? OR aggregation_id = ?", id, ref)
	} else {
		stmt = stmt.Where("aggregation_id = ?", ref)
	}

	var agg domain.Aggregation
	if err := stmt.Take(&agg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &agg, nil
}

func (r *repo) ListByPhone(ctx context.Context, db *gorm.DB, phone string) ([]*domain.Aggregation, error) {
	var aggs []*domain.Aggregation
	err := db.WithContext(ctx).
		Where("customer_phone = ?", phone).
		Order("created_at desc, id desc").
		Find(&aggs).Error
	if err != nil {
		return nil, err
	}
	return aggs, nil
}

func (r *repo) AppendLog(ctx context.Context, db *gorm.DB, entry *domain.ActivityLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) Logs(ctx context.Context, db *gorm.DB, aggregationID snowflake.ID) ([]domain.ActivityLog, error) {
	var logs []domain.ActivityLog
	err := db.WithContext(ctx).
		Where("aggregation_id = ?", aggregationID).
		Order("seq asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
