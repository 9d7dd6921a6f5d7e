package model

// NormalChannelUser 普通频道成员关系（与 UserProfile 按 (channel_id, id) 关联）
type NormalChannelUser struct {
	ChannelID      int64  `gorm:"primaryKey;autoIncrement:false"`
	ID             int64  `gorm:"primaryKey;autoIncrement:false"`
	CountryISO     string `gorm:"type:varchar(4);not null;default:''"`
	AccountID      int64  `gorm:"not null;default:0"`
	StatusMessage  string `gorm:"not null;default:''"`
	LinkedServices string `gorm:"not null;default:''"`
	Suspended      bool   `gorm:"not null;default:false"`
	SuspendedAt    *int64
}

func (NormalChannelUser) TableName() string { return "normal_channel_user" }
