package model

// UserProfile 频道内的用户资料；Watermark 为该用户已读到的最大 log_id
type UserProfile struct {
	ChannelID          int64  `gorm:"primaryKey;autoIncrement:false"`
	ID                 int64  `gorm:"primaryKey;autoIncrement:false"`
	Nickname           string `gorm:"not null"`
	ProfileURL         string `gorm:"not null;default:''"`
	FullProfileURL     string `gorm:"not null;default:''"`
	OriginalProfileURL string `gorm:"not null;default:''"`
	Watermark          int64  `gorm:"not null;default:0"`
}

func (UserProfile) TableName() string { return "user_profile" }
