package protocol

// Chatlog 服务端下发的一条聊天记录
type Chatlog struct {
	LogID      int64   `json:"logId"`
	ChannelID  int64   `json:"chatId"`
	PrevLogID  *int64  `json:"prevId,omitempty"`
	Type       int32   `json:"type"`
	MessageID  int64   `json:"msgId"`
	SendAt     int64   `json:"sendAt"`
	AuthorID   int64   `json:"authorId"`
	Message    *string `json:"message,omitempty"`
	Attachment *string `json:"attachment,omitempty"`
	Supplement *string `json:"supplement,omitempty"`
	Referer    *int32  `json:"referer,omitempty"`
}
