package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/headless-talk/internal/channel"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/internal/session"
	"github.com/d60-Lab/headless-talk/internal/talk"
	"github.com/d60-Lab/headless-talk/pkg/response"
)

// TalkClient 接口层依赖的客户端能力，*talk.Client 实现该接口
type TalkClient interface {
	channel.Client
	OpenChannel(ctx context.Context, id int64) (*channel.ClientChannel, error)
	ChannelList(ctx context.Context) ([]talk.ChannelListEntry, error)
	SetStatus(ctx context.Context, status protocol.ClientStatus) error
}

type Handler struct {
	client TalkClient
}

func New(client TalkClient) *Handler {
	return &Handler{client: client}
}

// fail 远端请求失败返回 502，其余（存储）返回 500
func fail(c *gin.Context, err error) {
	var rerr *session.RequestError
	if errors.As(err, &rerr) {
		response.BadGateway(c, err)
		return
	}
	response.InternalError(c, err)
}
