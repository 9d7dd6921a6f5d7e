package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/headless-talk/internal/model"
)

type ChannelMetaRepository interface {
	// Content 读取单个元数据槽位，不存在时返回 nil
	Content(ctx context.Context, tx *gorm.DB, channelID int64, metaType model.MetaType) (*string, error)
	// Upsert 后写覆盖
	Upsert(ctx context.Context, tx *gorm.DB, meta *model.ChannelMeta) error
}

type channelMetaRepository struct{ db *gorm.DB }

func NewChannelMetaRepository(db *gorm.DB) ChannelMetaRepository {
	return &channelMetaRepository{db: db}
}

func (r *channelMetaRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *channelMetaRepository) Content(ctx context.Context, tx *gorm.DB, channelID int64, metaType model.MetaType) (*string, error) {
	var meta model.ChannelMeta
	err := r.conn(tx).WithContext(ctx).
		Where("channel_id = ? AND type = ?", channelID, metaType).
		Take(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta.Content, nil
}

func (r *channelMetaRepository) Upsert(ctx context.Context, tx *gorm.DB, meta *model.ChannelMeta) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"content"}),
		}).
		Create(meta).Error
}
