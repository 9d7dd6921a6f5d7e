package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/internal/repository"
	"github.com/d60-Lab/headless-talk/pkg/database"
)

type poolClient struct{ p *pool.Pool }

func (c poolClient) Pool() *pool.Pool { return c.p }

func setupPool(t *testing.T) *pool.Pool {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	p := pool.New(db, 2, 16)
	t.Cleanup(p.Close)
	return p
}

func seedProfiles(t *testing.T, p *pool.Pool, profiles ...*model.UserProfile) {
	t.Helper()
	require.NoError(t, repository.NewUserProfileRepository(p.DB()).Upsert(context.Background(), nil, profiles...))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNormal, Classify(protocol.ChannelTypeDirectChat))
	assert.Equal(t, KindNormal, Classify(protocol.ChannelTypeMultiChat))
	assert.Equal(t, KindNormal, Classify(protocol.ChannelTypeMemoChat))
	assert.Equal(t, KindUnrecognized, Classify(protocol.ChannelTypeOpenMulti))
	assert.Equal(t, KindUnrecognized, Classify(""))
}

func TestListProfileFallsBackToNicknames(t *testing.T) {
	p := setupPool(t)
	users := []DisplayUser{{ID: 1, Nickname: "Alice"}, {ID: 2, Nickname: "Bob"}}

	profile, err := LoadListProfile(context.Background(), p, users, &model.ChannelListRow{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Alice, Bob", profile.Name)
	assert.Nil(t, profile.ImageURL)
}

func TestListProfileUsesTitle(t *testing.T) {
	p := setupPool(t)
	ctx := context.Background()
	metas := repository.NewChannelMetaRepository(p.DB())
	require.NoError(t, metas.Upsert(ctx, nil, &model.ChannelMeta{ChannelID: 42, Type: model.MetaTypeTitle, Content: "Team"}))
	require.NoError(t, metas.Upsert(ctx, nil, &model.ChannelMeta{ChannelID: 42, Type: model.MetaTypeProfile, Content: "https://img/team.png"}))
	// 其他频道的元数据不影响
	require.NoError(t, metas.Upsert(ctx, nil, &model.ChannelMeta{ChannelID: 43, Type: model.MetaTypeTitle, Content: "Other"}))

	profile, err := LoadListProfile(ctx, p, []DisplayUser{{Nickname: "Alice"}}, &model.ChannelListRow{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Team", profile.Name)
	require.NotNil(t, profile.ImageURL)
	assert.Equal(t, "https://img/team.png", *profile.ImageURL)
}

func TestListProfileImageWithoutTitle(t *testing.T) {
	p := setupPool(t)
	ctx := context.Background()
	metas := repository.NewChannelMetaRepository(p.DB())
	require.NoError(t, metas.Upsert(ctx, nil, &model.ChannelMeta{ChannelID: 42, Type: model.MetaTypeProfile, Content: "img"}))

	profile, err := LoadListProfile(ctx, p, []DisplayUser{{Nickname: "Bob"}, {Nickname: "Alice"}}, &model.ChannelListRow{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Bob, Alice", profile.Name)
	require.NotNil(t, profile.ImageURL)
	assert.Equal(t, "img", *profile.ImageURL)
}

func TestLoadListItem(t *testing.T) {
	p := setupPool(t)
	ctx := context.Background()
	seedProfiles(t, p,
		&model.UserProfile{ChannelID: 42, ID: 1, Nickname: "Alice"},
		&model.UserProfile{ChannelID: 42, ID: 2, Nickname: "Bob"},
	)
	chats := repository.NewChatRepository(p.DB())
	for _, id := range []int64{10, 11, 12} {
		require.NoError(t, chats.Insert(ctx, nil, &model.ChatLog{ChannelID: 42, LogID: id}))
	}
	seen := int64(10)

	item, err := LoadListItem(ctx, p, &model.ChannelListRow{
		ID: 42, Type: protocol.ChannelTypeMultiChat, DisplayUsers: []int64{2, 1}, LastSeenLogID: &seen,
	})
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, KindNormal, item.Kind)
	assert.Equal(t, "Bob, Alice", item.Profile.Name)
	assert.Equal(t, int64(2), item.UnreadCount)
	require.Len(t, item.DisplayUsers, 2)
	assert.Equal(t, int64(2), item.DisplayUsers[0].ID)
}

func TestLoadListItemDeclinesUnsupported(t *testing.T) {
	p := setupPool(t)

	item, err := LoadListItem(context.Background(), p, &model.ChannelListRow{ID: 7, Type: protocol.ChannelTypeOpenMulti})
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestNormalChannelUsers(t *testing.T) {
	p := setupPool(t)
	ctx := context.Background()
	seedProfiles(t, p,
		&model.UserProfile{ChannelID: 42, ID: 1, Nickname: "Alice", Watermark: 100},
		&model.UserProfile{ChannelID: 42, ID: 2, Nickname: "Bob", Watermark: 95},
	)
	require.NoError(t, repository.NewMemberRepository(p.DB()).Upsert(ctx, nil,
		&model.NormalChannelUser{ChannelID: 42, ID: 1, AccountID: 11},
		&model.NormalChannelUser{ChannelID: 42, ID: 2, AccountID: 22},
	))

	ch := NewNormalChannel(42, poolClient{p})
	users, err := ch.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "Alice", users[0].Profile.Nickname)
	assert.Equal(t, int64(22), users[1].Normal.AccountID)
	assert.Equal(t, int64(95), users[1].Profile.Watermark)
}

func TestNormalChannelUsersFailsWhole(t *testing.T) {
	p := setupPool(t)
	require.NoError(t, p.DB().Migrator().DropTable(&model.NormalChannelUser{}))

	users, err := NewNormalChannel(42, poolClient{p}).Users(context.Background())
	require.Error(t, err)
	assert.Nil(t, users)
	var serr *pool.StoreError
	assert.ErrorAs(t, err, &serr)
}
