package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/headless-talk/internal/protocol"
)

// ErrSessionClosed 会话已断开，未完成的请求以此失败
var ErrSessionClosed = errors.New("session closed")

// Session 与远端服务的长连接：推送命令流 + 请求/响应调用。实现须支持并发调用。
type Session interface {
	// ChatOn 打开频道的握手，lastLogID 为本地已缓存的最大 log_id
	ChatOn(ctx context.Context, channelID int64, lastLogID *int64) (*protocol.ChatOnResponse, error)
	SetStatus(ctx context.Context, status protocol.ClientStatus) error
	Ping(ctx context.Context) error
	// Commands 推送命令流，连接结束时关闭
	Commands() <-chan protocol.StreamCommand
	Close() error
}

// RequestError 远端调用失败：传输错误或非零状态码
type RequestError struct {
	Method string
	Status int32
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("request %s: status %d", e.Method, e.Status)
	}
	return fmt.Sprintf("request %s: %v", e.Method, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
