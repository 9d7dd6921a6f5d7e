package channel

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/repository"
)

// DisplayUser 列表中展示的成员
type DisplayUser struct {
	ID       int64
	Nickname string
	ImageURL string
}

// ListChannelProfile 列表项的名称与头像
type ListChannelProfile struct {
	Name     string
	ImageURL *string
}

// ChannelListItem 频道列表的一项
type ChannelListItem struct {
	Kind          Kind
	Profile       ListChannelProfile
	DisplayUsers  []DisplayUser
	LastChatLogID *int64
	LastSeenLogID *int64
	LastUpdate    int64
	UnreadCount   int64
}

// LoadListProfile 读取标题与头像两个元数据槽位。两次读取不在同一事务中。
// 没有标题时用展示成员的昵称按给定顺序以 ", " 拼接。
func LoadListProfile(ctx context.Context, p *pool.Pool, displayUsers []DisplayUser, row *model.ChannelListRow) (ListChannelProfile, error) {
	metas := repository.NewChannelMetaRepository(p.DB())

	var name, imageURL *string
	err := p.Spawn(ctx, func(db *gorm.DB) error {
		var err error
		if name, err = metas.Content(ctx, db, row.ID, model.MetaTypeTitle); err != nil {
			return err
		}
		imageURL, err = metas.Content(ctx, db, row.ID, model.MetaTypeProfile)
		return err
	})
	if err != nil {
		return ListChannelProfile{}, err
	}

	profile := ListChannelProfile{ImageURL: imageURL}
	if name != nil {
		profile.Name = *name
	} else {
		profile.Name = joinNicknames(displayUsers)
	}
	return profile, nil
}

func joinNicknames(users []DisplayUser) string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Nickname
	}
	return strings.Join(names, ", ")
}

// LoadListItem 构建单个列表项；不支持的频道类型返回 nil
func LoadListItem(ctx context.Context, p *pool.Pool, row *model.ChannelListRow) (*ChannelListItem, error) {
	kind := Classify(row.Type)
	if kind != KindNormal {
		return nil, nil
	}

	profiles := repository.NewUserProfileRepository(p.DB())
	chats := repository.NewChatRepository(p.DB())

	var (
		displayUsers []DisplayUser
		unread       int64
	)
	err := p.Spawn(ctx, func(db *gorm.DB) error {
		users, err := profiles.ListByIDs(ctx, db, row.ID, row.DisplayUsers)
		if err != nil {
			return err
		}
		displayUsers = make([]DisplayUser, len(users))
		for i, u := range users {
			displayUsers[i] = DisplayUser{ID: u.ID, Nickname: u.Nickname, ImageURL: u.ProfileURL}
		}
		unread, err = chats.CountAfter(ctx, db, row.ID, row.LastSeenLogID)
		return err
	})
	if err != nil {
		return nil, err
	}

	profile, err := LoadListProfile(ctx, p, displayUsers, row)
	if err != nil {
		return nil, err
	}

	return &ChannelListItem{
		Kind:          kind,
		Profile:       profile,
		DisplayUsers:  displayUsers,
		LastChatLogID: row.LastChatLogID,
		LastSeenLogID: row.LastSeenLogID,
		LastUpdate:    row.LastUpdate,
		UnreadCount:   unread,
	}, nil
}
