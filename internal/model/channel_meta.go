package model

// MetaType 频道元数据槽位
type MetaType int32

const (
	MetaTypeNotice          MetaType = 1
	MetaTypeGroup           MetaType = 2
	MetaTypeTitle           MetaType = 3
	MetaTypeProfile         MetaType = 4
	MetaTypeTV              MetaType = 5
	MetaTypePrivilege       MetaType = 6
	MetaTypeTVLive          MetaType = 7
	MetaTypePlusBackground  MetaType = 8
	MetaTypeLiveTalkInfo    MetaType = 11
	MetaTypeLiveTalkCount   MetaType = 12
	MetaTypeOpenChannelChat MetaType = 13
	MetaTypeBot             MetaType = 14
)

// ChannelMeta 每个 (channel_id, type) 只保留最新一条
type ChannelMeta struct {
	ChannelID int64    `gorm:"primaryKey;autoIncrement:false"`
	Type      MetaType `gorm:"primaryKey;autoIncrement:false"`
	Content   string   `gorm:"type:text;not null"`
}

func (ChannelMeta) TableName() string { return "channel_meta" }
