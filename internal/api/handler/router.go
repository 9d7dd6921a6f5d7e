package handler

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter 注册 /api/v1 路由
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// sentrygin 上报 panic 后交给 Recovery 返回 500
	r.Use(gin.Recovery(), sentrygin.New(sentrygin.Options{Repanic: true}), gzip.Gzip(gzip.DefaultCompression), otelgin.Middleware("talkd"))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/channels", h.ListChannels)
		v1.POST("/channels/:id/open", h.OpenChannel)
		v1.GET("/channels/:id/members", h.ListMembers)
		v1.PUT("/status", h.SetStatus)
	}
	return r
}
