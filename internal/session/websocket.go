package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/pkg/logger"
)

// Frame 线上帧。请求与响应通过 ID 关联，没有 ID 的帧是推送命令。
type Frame struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method"`
	Status int32           `json:"status,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// ReadTimeout 为 0 时不设读超时，依赖 ping 维持连接
	ReadTimeout   time.Duration
	Header        http.Header
	CommandBuffer int
}

func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		CommandBuffer:    64,
	}
}

// WebSocketSession 基于 websocket 的 Session 实现
type WebSocketSession struct {
	conn *websocket.Conn
	opts Options
	log  *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Frame
	closed  bool

	commands  chan protocol.StreamCommand
	done      chan struct{}
	closeOnce sync.Once
}

// Dial 建立连接并启动读循环
func Dial(ctx context.Context, url string, opts Options) (*WebSocketSession, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, &RequestError{Method: "CONNECT", Err: err}
	}
	return New(conn, opts), nil
}

func New(conn *websocket.Conn, opts Options) *WebSocketSession {
	if opts.CommandBuffer <= 0 {
		opts.CommandBuffer = 64
	}
	s := &WebSocketSession{
		conn:     conn,
		opts:     opts,
		log:      logger.Named("session"),
		pending:  make(map[string]chan Frame),
		commands: make(chan protocol.StreamCommand, opts.CommandBuffer),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *WebSocketSession) Commands() <-chan protocol.StreamCommand { return s.commands }

func (s *WebSocketSession) ChatOn(ctx context.Context, channelID int64, lastLogID *int64) (*protocol.ChatOnResponse, error) {
	var res protocol.ChatOnResponse
	req := protocol.ChatOnRequest{ChannelID: channelID, LastLogID: lastLogID}
	if err := s.request(ctx, protocol.MethodChatOn, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *WebSocketSession) SetStatus(ctx context.Context, status protocol.ClientStatus) error {
	return s.request(ctx, protocol.MethodSetStatus, protocol.SetStatusRequest{Status: status}, nil)
}

func (s *WebSocketSession) Ping(ctx context.Context) error {
	return s.request(ctx, protocol.MethodPing, nil, nil)
}

func (s *WebSocketSession) request(ctx context.Context, method string, req, res any) error {
	var body json.RawMessage
	if req != nil {
		raw, err := json.Marshal(req)
		if err != nil {
			return &RequestError{Method: method, Err: err}
		}
		body = raw
	}

	id := uuid.NewString()
	ch := make(chan Frame, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &RequestError{Method: method, Err: ErrSessionClosed}
	}
	s.pending[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	if err := s.write(Frame{ID: id, Method: method, Body: body}); err != nil {
		return &RequestError{Method: method, Err: err}
	}

	select {
	case f, ok := <-ch:
		if !ok {
			return &RequestError{Method: method, Err: ErrSessionClosed}
		}
		if f.Status != 0 {
			return &RequestError{Method: method, Status: f.Status}
		}
		if res != nil && len(f.Body) > 0 {
			if err := json.Unmarshal(f.Body, res); err != nil {
				return &RequestError{Method: method, Err: err}
			}
		}
		return nil
	case <-ctx.Done():
		return &RequestError{Method: method, Err: ctx.Err()}
	}
}

func (s *WebSocketSession) write(f Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.opts.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	return s.conn.WriteJSON(f)
}

func (s *WebSocketSession) readLoop() {
	defer s.shutdown()
	for {
		if s.opts.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		}
		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.log.Debug("read loop ended", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		var f Frame
		if err := json.Unmarshal(message, &f); err != nil {
			s.log.Warn("drop malformed frame", zap.Error(err))
			continue
		}

		if f.ID != "" {
			s.mu.Lock()
			ch, ok := s.pending[f.ID]
			s.mu.Unlock()
			if ok {
				// 同一 id 的重复应答直接丢弃，读循环不能阻塞
				select {
				case ch <- f:
				default:
					s.log.Debug("duplicate response", zap.String("id", f.ID), zap.String("method", f.Method))
				}
			} else {
				s.log.Debug("response without pending request", zap.String("id", f.ID), zap.String("method", f.Method))
			}
			continue
		}

		cmd, err := protocol.DecodeCommand(f.Method, f.Body)
		if err != nil {
			s.log.Warn("drop undecodable command", zap.String("method", f.Method), zap.Error(err))
			continue
		}
		select {
		case s.commands <- cmd:
		case <-s.done:
			return
		}
	}
}

func (s *WebSocketSession) shutdown() {
	s.mu.Lock()
	s.closed = true
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	s.mu.Unlock()
	close(s.commands)
}

// Close 断开连接；读循环随之结束并关闭 Commands()
func (s *WebSocketSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
