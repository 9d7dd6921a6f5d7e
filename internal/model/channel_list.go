package model

import "gorm.io/datatypes"

// ChannelListRow 频道列表摘要
type ChannelListRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement:false"`
	Type          string `gorm:"type:varchar(32);not null"` // 频道类型标签，如 DirectChat
	LastSeenLogID *int64
	LastChatLogID *int64
	LastUpdate    int64                      `gorm:"not null;default:0"`
	DisplayUsers  datatypes.JSONSlice[int64] // 列表展示用的成员 id，按顺序
	PushAlert     bool                       `gorm:"not null"`
}

func (ChannelListRow) TableName() string { return "channel_list" }
