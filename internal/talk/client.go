package talk

import (
	"context"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/headless-talk/internal/event"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/internal/session"
	"github.com/d60-Lab/headless-talk/internal/stream"
	"github.com/d60-Lab/headless-talk/pkg/logger"
)

// Options 客户端参数
type Options struct {
	UserID       int64
	PingInterval time.Duration
	// Hub 处理命令失败时上报；nil 使用 sentry.CurrentHub()
	Hub *sentry.Hub
}

// Client 组合远端会话与本地缓存。
// 后台任务：定时 ping，以及把推送命令交给 stream.Handler 后写入 Sink。
type Client struct {
	userID  int64
	session session.Session
	pool    *pool.Pool
	handler *stream.Handler
	sink    event.Sink
	hub     *sentry.Hub
	tracer  trace.Tracer
	log     *zap.Logger
	cancel  context.CancelFunc
}

// New 创建客户端并启动后台任务。pool 由调用方持有，Close 不会关闭它。
func New(sess session.Session, p *pool.Pool, sink event.Sink, opts Options) *Client {
	if opts.PingInterval <= 0 {
		opts.PingInterval = time.Minute
	}
	if opts.Hub == nil {
		opts.Hub = sentry.CurrentHub()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		userID:  opts.UserID,
		session: sess,
		pool:    p,
		handler: stream.NewHandler(p),
		sink:    sink,
		hub:     opts.Hub,
		tracer:  otel.Tracer("github.com/d60-Lab/headless-talk/internal/talk"),
		log:     logger.Named("talk").With(zap.Int64("user_id", opts.UserID)),
		cancel:  cancel,
	}
	go c.pingLoop(ctx, opts.PingInterval)
	go c.streamLoop(ctx)
	return c
}

func (c *Client) UserID() int64 { return c.userID }

// Pool 供频道句柄回指使用
func (c *Client) Pool() *pool.Pool { return c.pool }

// SetStatus 上报客户端状态（锁屏/解锁）
func (c *Client) SetStatus(ctx context.Context, status protocol.ClientStatus) error {
	if err := c.session.SetStatus(ctx, status); err != nil {
		return &ClientError{Op: "set_status", Err: err}
	}
	return nil
}

// Close 取消后台任务（不等待其退出）并关闭会话
func (c *Client) Close() error {
	c.cancel()
	return c.session.Close()
}

func (c *Client) pingLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.session.Ping(ctx); err != nil {
				c.log.Warn("ping failed", zap.Error(err))
			}
		}
	}
}

func (c *Client) streamLoop(ctx context.Context) {
	cmds := c.session.Commands()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-cmds:
			if !ok {
				c.log.Info("command stream closed")
				return
			}
			c.dispatch(ctx, cmd)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, cmd protocol.StreamCommand) {
	ev, err := c.handler.Handle(ctx, cmd)
	if err != nil {
		c.log.Error("handle command", zap.String("method", cmd.Method()), zap.Error(err))
		c.hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("method", cmd.Method())
			scope.SetTag("user_id", strconv.FormatInt(c.userID, 10))
			c.hub.CaptureException(err)
		})
		return
	}
	if ev == nil || c.sink == nil {
		return
	}
	if err := c.sink.Emit(ctx, ev); err != nil {
		c.log.Warn("emit event", zap.String("method", cmd.Method()), zap.Error(err))
	}
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
