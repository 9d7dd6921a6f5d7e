package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/headless-talk/internal/model"
)

type ChannelListRepository interface {
	// All 按 id 顺序返回全部频道摘要
	All(ctx context.Context, tx *gorm.DB) ([]*model.ChannelListRow, error)
	Upsert(ctx context.Context, tx *gorm.DB, rows ...*model.ChannelListRow) error
}

type channelListRepository struct{ db *gorm.DB }

func NewChannelListRepository(db *gorm.DB) ChannelListRepository {
	return &channelListRepository{db: db}
}

func (r *channelListRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *channelListRepository) All(ctx context.Context, tx *gorm.DB) ([]*model.ChannelListRow, error) {
	var rows []*model.ChannelListRow
	if err := r.conn(tx).WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *channelListRepository) Upsert(ctx context.Context, tx *gorm.DB, rows ...*model.ChannelListRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
}
