package protocol

// 请求 method 名
const (
	MethodChatOn    = "CHATONROOM"
	MethodSetStatus = "SETST"
	MethodPing      = "PING"
)

// 频道类型标签
const (
	ChannelTypeDirectChat = "DirectChat"
	ChannelTypeMultiChat  = "MultiChat"
	ChannelTypeMemoChat   = "MemoChat"
	ChannelTypeOpenDirect = "OD"
	ChannelTypeOpenMulti  = "OM"
)

type ChatOnRequest struct {
	ChannelID int64  `json:"chatId"`
	LastLogID *int64 `json:"token,omitempty"`
}

// ChatOnResponse 打开频道的握手结果；WatermarkUserIDs 与 Watermarks 按位置一一对应
type ChatOnResponse struct {
	ChannelType      string  `json:"t"`
	WatermarkUserIDs []int64 `json:"a"`
	Watermarks       []int64 `json:"w"`
}

// ClientStatus 客户端锁定状态
type ClientStatus int32

const (
	ClientStatusUnlocked ClientStatus = 1
	ClientStatusLocked   ClientStatus = 2
)

func (s ClientStatus) Valid() bool {
	return s == ClientStatusUnlocked || s == ClientStatusLocked
}

type SetStatusRequest struct {
	Status ClientStatus `json:"st"`
}
