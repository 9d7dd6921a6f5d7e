package event

import "github.com/d60-Lab/headless-talk/internal/protocol"

// ClientEvent 交给上层应用的事件
type ClientEvent interface {
	clientEvent()
}

type Kickout struct {
	Reason int32
}

type SwitchServer struct{}

// Channel 某个频道上的事件
type Channel struct {
	ID    int64
	Event ChannelEvent
}

func (Kickout) clientEvent()      {}
func (SwitchServer) clientEvent() {}
func (Channel) clientEvent()      {}

type ChannelEvent interface {
	channelEvent()
}

type Chat struct {
	LinkID       *int64
	UserNickname string
	Chat         protocol.Chatlog
}

// ChatRead 用户已读到 LogID
type ChatRead struct {
	UserID int64
	LogID  int64
}

func (Chat) channelEvent()     {}
func (ChatRead) channelEvent() {}
