package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/headless-talk/internal/model"
)

type UserProfileRepository interface {
	// UpdateWatermark 无条件覆盖 watermark（不取最大值），返回受影响行数；行不存在时为 0
	UpdateWatermark(ctx context.Context, tx *gorm.DB, channelID, userID, watermark int64) (int64, error)
	Get(ctx context.Context, tx *gorm.DB, channelID, userID int64) (*model.UserProfile, error)
	// ListByIDs 按 userIDs 的顺序返回，不存在的 id 被跳过
	ListByIDs(ctx context.Context, tx *gorm.DB, channelID int64, userIDs []int64) ([]*model.UserProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profiles ...*model.UserProfile) error
}

type userProfileRepository struct{ db *gorm.DB }

func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userProfileRepository) UpdateWatermark(ctx context.Context, tx *gorm.DB, channelID, userID, watermark int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("channel_id = ? AND id = ?", channelID, userID).
		Update("watermark", watermark)
	return res.RowsAffected, res.Error
}

func (r *userProfileRepository) Get(ctx context.Context, tx *gorm.DB, channelID, userID int64) (*model.UserProfile, error) {
	var u model.UserProfile
	if err := r.conn(tx).WithContext(ctx).
		Where("channel_id = ? AND id = ?", channelID, userID).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userProfileRepository) ListByIDs(ctx context.Context, tx *gorm.DB, channelID int64, userIDs []int64) ([]*model.UserProfile, error) {
	if len(userIDs) == 0 {
		return []*model.UserProfile{}, nil
	}
	var rows []*model.UserProfile
	if err := r.conn(tx).WithContext(ctx).
		Where("channel_id = ? AND id IN ?", channelID, userIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.UserProfile, len(rows))
	for _, u := range rows {
		byID[u.ID] = u
	}
	res := make([]*model.UserProfile, 0, len(rows))
	for _, id := range userIDs {
		if u, ok := byID[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (r *userProfileRepository) Upsert(ctx context.Context, tx *gorm.DB, profiles ...*model.UserProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "id"}},
			UpdateAll: true,
		}).
		Create(&profiles).Error
}
