package model

import "github.com/d60-Lab/headless-talk/internal/protocol"

// ChatLog 本地缓存的聊天记录，(channel_id, log_id) 唯一
type ChatLog struct {
	ChannelID   int64   `gorm:"primaryKey;autoIncrement:false"`
	LogID       int64   `gorm:"primaryKey;autoIncrement:false"`
	PrevLogID   *int64  // 同频道内更早的一条记录，可能不连续
	Type        int32   `gorm:"not null"`
	MessageID   int64   `gorm:"not null"`
	SendAt      int64   `gorm:"not null"`
	AuthorID    int64   `gorm:"not null;index"`
	Message     *string `gorm:"type:text"`
	Attachment  *string `gorm:"type:text"`
	Supplement  *string `gorm:"type:text"`
	Referer     *int32
	DeletedTime *int64 // 软删除标记
}

func (ChatLog) TableName() string { return "chat" }

// ChatLogFromChatlog 将推送的 chatlog 转为缓存行
func ChatLogFromChatlog(log *protocol.Chatlog, deletedTime *int64) *ChatLog {
	return &ChatLog{
		ChannelID:   log.ChannelID,
		LogID:       log.LogID,
		PrevLogID:   log.PrevLogID,
		Type:        log.Type,
		MessageID:   log.MessageID,
		SendAt:      log.SendAt,
		AuthorID:    log.AuthorID,
		Message:     log.Message,
		Attachment:  log.Attachment,
		Supplement:  log.Supplement,
		Referer:     log.Referer,
		DeletedTime: deletedTime,
	}
}

// Chatlog 还原为协议结构
func (c *ChatLog) Chatlog() protocol.Chatlog {
	return protocol.Chatlog{
		ChannelID:  c.ChannelID,
		LogID:      c.LogID,
		PrevLogID:  c.PrevLogID,
		Type:       c.Type,
		MessageID:  c.MessageID,
		SendAt:     c.SendAt,
		AuthorID:   c.AuthorID,
		Message:    c.Message,
		Attachment: c.Attachment,
		Supplement: c.Supplement,
		Referer:    c.Referer,
	}
}
