package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/headless-talk/internal/protocol"
)

// Sink 接收 handler 产出的事件
type Sink interface {
	Emit(ctx context.Context, ev ClientEvent) error
}

// SinkFunc 适配普通函数
type SinkFunc func(ctx context.Context, ev ClientEvent) error

func (f SinkFunc) Emit(ctx context.Context, ev ClientEvent) error { return f(ctx, ev) }

// ChanSink 写入带缓冲的 channel，满时阻塞直到 ctx 结束
type ChanSink chan ClientEvent

func (s ChanSink) Emit(ctx context.Context, ev ClientEvent) error {
	select {
	case s <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Envelope 事件在 redis 上的 JSON 表示
type Envelope struct {
	Type      string          `json:"type"`
	ChannelID int64           `json:"channel_id,omitempty"`
	Event     string          `json:"event,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Encode 将事件转为 Envelope
func Encode(ev ClientEvent) (*Envelope, error) {
	var (
		env     Envelope
		payload any
	)
	switch e := ev.(type) {
	case Kickout:
		env.Type = "kickout"
		payload = map[string]int32{"reason": e.Reason}
	case SwitchServer:
		env.Type = "switch_server"
	case Channel:
		env.Type = "channel"
		env.ChannelID = e.ID
		switch ce := e.Event.(type) {
		case Chat:
			env.Event = "chat"
			payload = struct {
				LinkID       *int64           `json:"link_id,omitempty"`
				UserNickname string           `json:"user_nickname"`
				Chat         protocol.Chatlog `json:"chat"`
			}{ce.LinkID, ce.UserNickname, ce.Chat}
		case ChatRead:
			env.Event = "chat_read"
			payload = map[string]int64{"user_id": ce.UserID, "log_id": ce.LogID}
		default:
			return nil, fmt.Errorf("unknown channel event %T", e.Event)
		}
	default:
		return nil, fmt.Errorf("unknown client event %T", ev)
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return &env, nil
}

// RedisSink 通过 redis pub/sub 广播事件，供同一账号的其他进程订阅
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Emit(ctx context.Context, ev ClientEvent) error {
	env, err := Encode(ev)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}

// Subscribe 订阅事件广播，返回的 PubSub 由调用方关闭
func (s *RedisSink) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, s.channel)
}

// Multi 依次投递到多个 sink，遇到第一个错误即返回
type Multi []Sink

func (m Multi) Emit(ctx context.Context, ev ClientEvent) error {
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
