package talk

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/channel"
	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/repository"
)

// ChannelListEntry 频道列表中的一项
type ChannelListEntry struct {
	ID   int64
	Item *channel.ChannelListItem
}

// ChannelList 读取本地频道列表。读取摘要行失败时整体失败；
// 单行构建失败只记录日志并跳过，不支持的类型直接跳过。顺序与摘要行一致。
func (c *Client) ChannelList(ctx context.Context) (_ []ChannelListEntry, err error) {
	ctx, span := c.startSpan(ctx, "talk.ChannelList")
	defer func() { endSpan(span, err) }()

	lists := repository.NewChannelListRepository(c.pool.DB())
	rows, err := pool.Query(ctx, c.pool, func(db *gorm.DB) ([]*model.ChannelListRow, error) {
		return lists.All(ctx, db)
	})
	if err != nil {
		return nil, &ClientError{Op: "channel_list", Err: err}
	}

	entries := make([]ChannelListEntry, 0, len(rows))
	for _, row := range rows {
		item, err := channel.LoadListItem(ctx, c.pool, row)
		if err != nil {
			c.log.Warn("load channel list item", zap.Int64("channel_id", row.ID), zap.Error(err))
			continue
		}
		if item == nil {
			continue
		}
		entries = append(entries, ChannelListEntry{ID: row.ID, Item: item})
	}
	span.SetAttributes(attribute.Int("channel.count", len(entries)))
	return entries, nil
}
