package channel

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/repository"
)

// Client 频道句柄回指的客户端能力；句柄不拥有客户端
type Client interface {
	Pool() *pool.Pool
}

// NormalChannel 普通频道句柄
type NormalChannel struct {
	id     int64
	client Client
}

func NewNormalChannel(id int64, client Client) *NormalChannel {
	return &NormalChannel{id: id, client: client}
}

func (c *NormalChannel) ID() int64 { return c.id }

func (c *NormalChannel) Client() Client { return c.client }

// NormalChannelUser 频道成员（成员关系 + 用户资料）
type NormalChannelUser struct {
	ID      int64
	Profile model.UserProfile
	Normal  model.NormalChannelUser
}

// Users 列出频道成员；任一行失败则整体返回错误，不返回部分结果
func (c *NormalChannel) Users(ctx context.Context) ([]NormalChannelUser, error) {
	p := c.client.Pool()
	members := repository.NewMemberRepository(p.DB())

	return pool.Query(ctx, p, func(db *gorm.DB) ([]NormalChannelUser, error) {
		rows, err := members.ListWithProfiles(ctx, db, c.id)
		if err != nil {
			return nil, err
		}
		users := make([]NormalChannelUser, len(rows))
		for i, row := range rows {
			users[i] = NormalChannelUser{ID: row.Profile.ID, Profile: row.Profile, Normal: row.User}
		}
		return users, nil
	})
}
