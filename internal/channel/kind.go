package channel

import "github.com/d60-Lab/headless-talk/internal/protocol"

// Kind 客户端可用的频道类型。新增类型时在 Classify 与 ClientChannel 中补齐分支。
type Kind int

const (
	KindUnrecognized Kind = iota
	KindNormal
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	default:
		return "unrecognized"
	}
}

// Classify 将服务端的频道类型标签映射为 Kind；直聊、群聊、备忘均归为 Normal
func Classify(tag string) Kind {
	switch tag {
	case protocol.ChannelTypeDirectChat, protocol.ChannelTypeMultiChat, protocol.ChannelTypeMemoChat:
		return KindNormal
	default:
		return KindUnrecognized
	}
}

// ClientChannel 已打开的频道，Kind 决定哪个字段有效
type ClientChannel struct {
	Kind   Kind
	Normal *NormalChannel
}

func (c *ClientChannel) ID() int64 {
	switch c.Kind {
	case KindNormal:
		return c.Normal.ID()
	default:
		return 0
	}
}
