package protocol

import (
	"encoding/json"
	"fmt"
)

// 推送命令的 method 名
const (
	MethodKickout      = "KICKOUT"
	MethodSwitchServer = "CHANGESVR"
	MethodMsg          = "MSG"
	MethodDecunRead    = "DECUNREAD"
)

// StreamCommand 会话推送的命令
type StreamCommand interface {
	Method() string
}

type Kickout struct {
	Reason int32 `json:"reason"`
}

type SwitchServer struct{}

// Msg 新聊天消息
type Msg struct {
	ChannelID      int64   `json:"chatId"`
	LogID          int64   `json:"logId"`
	Chatlog        Chatlog `json:"chatLog"`
	AuthorNickname string  `json:"authorNickname"`
	NoSeen         bool    `json:"noSeen"`
	LinkID         *int64  `json:"li,omitempty"`
}

// DecunRead 已读回执
type DecunRead struct {
	ChannelID int64 `json:"chatId"`
	UserID    int64 `json:"userId"`
	Watermark int64 `json:"watermark"`
}

// Unknown 未处理的推送，仅保留 method
type Unknown struct {
	Name string
}

func (Kickout) Method() string      { return MethodKickout }
func (SwitchServer) Method() string { return MethodSwitchServer }
func (Msg) Method() string          { return MethodMsg }
func (DecunRead) Method() string    { return MethodDecunRead }
func (u Unknown) Method() string    { return u.Name }

// DecodeCommand 按 method 解析推送体，未识别的 method 返回 Unknown
func DecodeCommand(method string, body json.RawMessage) (StreamCommand, error) {
	var cmd StreamCommand
	switch method {
	case MethodKickout:
		var k Kickout
		if err := decodeBody(body, &k); err != nil {
			return nil, fmt.Errorf("decode %s: %w", method, err)
		}
		cmd = k
	case MethodSwitchServer:
		cmd = SwitchServer{}
	case MethodMsg:
		var m Msg
		if err := decodeBody(body, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", method, err)
		}
		cmd = m
	case MethodDecunRead:
		var r DecunRead
		if err := decodeBody(body, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", method, err)
		}
		cmd = r
	default:
		cmd = Unknown{Name: method}
	}
	return cmd, nil
}

func decodeBody(body json.RawMessage, v any) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
