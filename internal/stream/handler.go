package stream

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/event"
	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/internal/repository"
	"github.com/d60-Lab/headless-talk/pkg/logger"
)

// Handler 将会话推送的命令应用到本地缓存，并产出客户端事件。
// 事件只在存储写入成功后返回；未识别的命令不访问存储。
type Handler struct {
	pool     *pool.Pool
	chats    repository.ChatRepository
	profiles repository.UserProfileRepository
	log      *zap.Logger
}

func NewHandler(p *pool.Pool) *Handler {
	return &Handler{
		pool:     p,
		chats:    repository.NewChatRepository(p.DB()),
		profiles: repository.NewUserProfileRepository(p.DB()),
		log:      logger.Named("stream"),
	}
}

// Handle 处理一条命令，返回 nil 事件表示无需通知
func (h *Handler) Handle(ctx context.Context, cmd protocol.StreamCommand) (event.ClientEvent, error) {
	switch c := cmd.(type) {
	case protocol.Kickout:
		return event.Kickout{Reason: c.Reason}, nil
	case protocol.SwitchServer:
		return event.SwitchServer{}, nil
	case protocol.Msg:
		return h.onChat(ctx, c)
	case protocol.DecunRead:
		return h.onChatRead(ctx, c)
	default:
		h.log.Debug("ignore command", zap.String("method", cmd.Method()))
		return nil, nil
	}
}

func (h *Handler) onChat(ctx context.Context, msg protocol.Msg) (event.ClientEvent, error) {
	row := model.ChatLogFromChatlog(&msg.Chatlog, nil)
	err := h.pool.Spawn(ctx, func(db *gorm.DB) error {
		return h.chats.Insert(ctx, db, row)
	})
	if err != nil {
		return nil, &HandlerError{Method: msg.Method(), Err: err}
	}

	return event.Channel{
		ID: msg.ChannelID,
		Event: event.Chat{
			LinkID:       msg.LinkID,
			UserNickname: msg.AuthorNickname,
			Chat:         msg.Chatlog,
		},
	}, nil
}

func (h *Handler) onChatRead(ctx context.Context, read protocol.DecunRead) (event.ClientEvent, error) {
	var affected int64
	err := h.pool.Spawn(ctx, func(db *gorm.DB) error {
		n, err := h.profiles.UpdateWatermark(ctx, db, read.ChannelID, read.UserID, read.Watermark)
		affected = n
		return err
	})
	if err != nil {
		return nil, &HandlerError{Method: read.Method(), Err: err}
	}
	if affected == 0 {
		h.log.Debug("read receipt for unknown profile",
			zap.Int64("channel_id", read.ChannelID), zap.Int64("user_id", read.UserID))
	}

	return event.Channel{
		ID:    read.ChannelID,
		Event: event.ChatRead{UserID: read.UserID, LogID: read.Watermark},
	}, nil
}
