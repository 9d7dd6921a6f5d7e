package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/headless-talk/internal/model"
)

// ChannelMember 成员关系与用户资料的联结结果
type ChannelMember struct {
	Profile model.UserProfile
	User    model.NormalChannelUser
}

type MemberRepository interface {
	// ListWithProfiles 联结 normal_channel_user 与 user_profile，任一行出错则整体失败
	ListWithProfiles(ctx context.Context, tx *gorm.DB, channelID int64) ([]ChannelMember, error)
	Upsert(ctx context.Context, tx *gorm.DB, users ...*model.NormalChannelUser) error
}

type memberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) MemberRepository { return &memberRepository{db: db} }

func (r *memberRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

type memberRow struct {
	ChannelID          int64
	ID                 int64
	Nickname           string
	ProfileURL         string
	FullProfileURL     string
	OriginalProfileURL string
	Watermark          int64
	CountryISO         string
	AccountID          int64
	StatusMessage      string
	LinkedServices     string
	Suspended          bool
	SuspendedAt        *int64
}

func (r *memberRepository) ListWithProfiles(ctx context.Context, tx *gorm.DB, channelID int64) ([]ChannelMember, error) {
	var rows []memberRow
	err := r.conn(tx).WithContext(ctx).
		Table("user_profile").
		Select(
			"user_profile.channel_id", "user_profile.id", "user_profile.nickname",
			"user_profile.profile_url", "user_profile.full_profile_url", "user_profile.original_profile_url",
			"user_profile.watermark",
			"normal_channel_user.country_iso", "normal_channel_user.account_id",
			"normal_channel_user.status_message", "normal_channel_user.linked_services",
			"normal_channel_user.suspended", "normal_channel_user.suspended_at",
		).
		Joins("JOIN normal_channel_user ON normal_channel_user.channel_id = user_profile.channel_id AND normal_channel_user.id = user_profile.id").
		Where("user_profile.channel_id = ?", channelID).
		Order("user_profile.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	res := make([]ChannelMember, len(rows))
	for i, row := range rows {
		res[i] = ChannelMember{
			Profile: model.UserProfile{
				ChannelID:          row.ChannelID,
				ID:                 row.ID,
				Nickname:           row.Nickname,
				ProfileURL:         row.ProfileURL,
				FullProfileURL:     row.FullProfileURL,
				OriginalProfileURL: row.OriginalProfileURL,
				Watermark:          row.Watermark,
			},
			User: model.NormalChannelUser{
				ChannelID:      row.ChannelID,
				ID:             row.ID,
				CountryISO:     row.CountryISO,
				AccountID:      row.AccountID,
				StatusMessage:  row.StatusMessage,
				LinkedServices: row.LinkedServices,
				Suspended:      row.Suspended,
				SuspendedAt:    row.SuspendedAt,
			},
		}
	}
	return res, nil
}

func (r *memberRepository) Upsert(ctx context.Context, tx *gorm.DB, users ...*model.NormalChannelUser) error {
	if len(users) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "channel_id"}, {Name: "id"}}, UpdateAll: true}).
		Create(&users).Error
}
