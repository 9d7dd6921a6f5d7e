package talk

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/channel"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/repository"
)

// OpenChannel 打开频道：读取本地最大 log_id，与服务端握手，
// 在一个事务中写回握手返回的已读水位，最后按频道类型构建句柄。
// 不支持的类型返回 (nil, nil)，此时水位已经写入。
func (c *Client) OpenChannel(ctx context.Context, id int64) (_ *channel.ClientChannel, err error) {
	ctx, span := c.startSpan(ctx, "talk.OpenChannel", attribute.Int64("channel.id", id))
	defer func() { endSpan(span, err) }()

	chats := repository.NewChatRepository(c.pool.DB())
	profiles := repository.NewUserProfileRepository(c.pool.DB())

	last, err := pool.Query(ctx, c.pool, func(db *gorm.DB) (*int64, error) {
		return chats.LastLogID(ctx, db, id)
	})
	if err != nil {
		return nil, &ClientError{Op: "open_channel", Err: err}
	}

	res, err := c.session.ChatOn(ctx, id, last)
	if err != nil {
		return nil, &ClientError{Op: "open_channel", Err: err}
	}

	n := len(res.WatermarkUserIDs)
	if len(res.Watermarks) != n {
		c.log.Warn("watermark length mismatch",
			zap.Int64("channel_id", id),
			zap.Int("user_ids", len(res.WatermarkUserIDs)),
			zap.Int("watermarks", len(res.Watermarks)))
		n = min(n, len(res.Watermarks))
	}

	err = c.pool.Transaction(ctx, func(tx *gorm.DB) error {
		for i := 0; i < n; i++ {
			if _, err := profiles.UpdateWatermark(ctx, tx, id, res.WatermarkUserIDs[i], res.Watermarks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &ClientError{Op: "open_channel", Err: err}
	}

	kind := channel.Classify(res.ChannelType)
	span.SetAttributes(attribute.String("channel.kind", kind.String()))
	if kind != channel.KindNormal {
		c.log.Debug("unsupported channel type", zap.Int64("channel_id", id), zap.String("type", res.ChannelType))
		return nil, nil
	}
	return &channel.ClientChannel{Kind: channel.KindNormal, Normal: channel.NewNormalChannel(id, c)}, nil
}
