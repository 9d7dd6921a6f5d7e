package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/model"
)

type ChatRepository interface {
	// Insert 插入一条记录，重复的 (channel_id, log_id) 返回冲突错误
	Insert(ctx context.Context, tx *gorm.DB, chat *model.ChatLog) error
	Get(ctx context.Context, tx *gorm.DB, channelID, logID int64) (*model.ChatLog, error)
	// LastLogID 频道内已缓存的最大 log_id，无记录时返回 nil
	LastLogID(ctx context.Context, tx *gorm.DB, channelID int64) (*int64, error)
	// CountAfter 统计 log_id 大于 logID 的记录数，logID 为 nil 时统计全部
	CountAfter(ctx context.Context, tx *gorm.DB, channelID int64, logID *int64) (int64, error)
}

type chatRepository struct{ db *gorm.DB }

func NewChatRepository(db *gorm.DB) ChatRepository { return &chatRepository{db: db} }

func (r *chatRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *chatRepository) Insert(ctx context.Context, tx *gorm.DB, chat *model.ChatLog) error {
	return r.conn(tx).WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) Get(ctx context.Context, tx *gorm.DB, channelID, logID int64) (*model.ChatLog, error) {
	var chat model.ChatLog
	err := r.conn(tx).WithContext(ctx).
		Where("channel_id = ? AND log_id = ?", channelID, logID).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) LastLogID(ctx context.Context, tx *gorm.DB, channelID int64) (*int64, error) {
	var chat model.ChatLog
	err := r.conn(tx).WithContext(ctx).
		Select("log_id").
		Where("channel_id = ?", channelID).
		Order("log_id DESC").
		Take(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat.LogID, nil
}

func (r *chatRepository) CountAfter(ctx context.Context, tx *gorm.DB, channelID int64, logID *int64) (int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&model.ChatLog{}).Where("channel_id = ?", channelID)
	if logID != nil {
		q = q.Where("log_id > ?", *logID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
