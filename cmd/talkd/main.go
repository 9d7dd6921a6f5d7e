package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/headless-talk/config"
	"github.com/d60-Lab/headless-talk/internal/api/handler"
	"github.com/d60-Lab/headless-talk/internal/event"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/session"
	"github.com/d60-Lab/headless-talk/internal/talk"
	"github.com/d60-Lab/headless-talk/pkg/database"
	"github.com/d60-Lab/headless-talk/pkg/logger"
)

func main() {
	// .env 可选
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.App.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// DSN 为空时 sentry 不上报
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	}); err != nil {
		logger.Warn("sentry init", zap.Error(err))
	}
	defer sentry.Flush(2 * time.Second)

	if err := run(cfg); err != nil {
		logger.Error("talkd exited", zap.Error(err))
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg.Tracing.Endpoint)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	p := pool.New(db, cfg.Pool.Workers, cfg.Pool.QueueSize)
	defer p.Close()

	opts := session.DefaultOptions()
	opts.HandshakeTimeout = cfg.Session.HandshakeTimeout
	opts.ReadTimeout = cfg.Session.ReadTimeout
	opts.WriteTimeout = cfg.Session.WriteTimeout
	sess, err := session.Dial(ctx, cfg.Session.URL, opts)
	if err != nil {
		return err
	}

	sink := event.Multi{event.SinkFunc(func(_ context.Context, ev event.ClientEvent) error {
		logger.Debug("event", zap.Any("event", ev))
		return nil
	})}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		sink = append(sink, event.NewRedisSink(rdb, cfg.Redis.EventsChannel))
	}

	client := talk.New(sess, p, sink, talk.Options{UserID: cfg.App.UserID, PingInterval: cfg.Session.PingInterval})
	defer client.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(handler.New(client), cfg.App.Mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupTracing endpoint 为空时使用默认的 noop provider
func setupTracing(ctx context.Context, endpoint string) (func(), error) {
	if endpoint == "" {
		return func() {}, nil
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}, nil
}
