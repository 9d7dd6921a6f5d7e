package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/pkg/database"
)

func setupDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func ptr[T any](v T) *T { return &v }

func TestChatInsertAndGet(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	chat := &model.ChatLog{
		ChannelID: 42, LogID: 101, PrevLogID: ptr[int64](99), Type: 1,
		MessageID: 7, SendAt: 1700000000, AuthorID: 3,
		Message: ptr("hello"), Supplement: ptr(`{"a":1}`), Referer: ptr[int32](2),
	}
	require.NoError(t, repo.Insert(ctx, nil, chat))

	got, err := repo.Get(ctx, nil, 42, 101)
	require.NoError(t, err)
	assert.Equal(t, chat, got)
	assert.Nil(t, got.Attachment)
	assert.Nil(t, got.DeletedTime)
}

func TestChatInsertDuplicate(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, nil, &model.ChatLog{ChannelID: 1, LogID: 1}))
	err := repo.Insert(ctx, nil, &model.ChatLog{ChannelID: 1, LogID: 1})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// 同 log_id 不同频道不冲突
	require.NoError(t, repo.Insert(ctx, nil, &model.ChatLog{ChannelID: 2, LogID: 1}))
}

func TestChatLastLogID(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	last, err := repo.LastLogID(ctx, nil, 42)
	require.NoError(t, err)
	assert.Nil(t, last)

	for _, id := range []int64{5, 100, 37} {
		require.NoError(t, repo.Insert(ctx, nil, &model.ChatLog{ChannelID: 42, LogID: id}))
	}
	require.NoError(t, repo.Insert(ctx, nil, &model.ChatLog{ChannelID: 43, LogID: 500}))

	last, err = repo.LastLogID(ctx, nil, 42)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, int64(100), *last)

	n, err := repo.CountAfter(ctx, nil, 42, ptr[int64](5))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountAfter(ctx, nil, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUpdateWatermarkOverwrites(t *testing.T) {
	db := setupDB(t)
	repo := NewUserProfileRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, nil, &model.UserProfile{ChannelID: 42, ID: 1, Nickname: "Alice"}))

	n, err := repo.UpdateWatermark(ctx, nil, 42, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.UpdateWatermark(ctx, nil, 42, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := repo.Get(ctx, nil, 42, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.Watermark)
	assert.Equal(t, "Alice", u.Nickname)
}

func TestUpdateWatermarkMissingRow(t *testing.T) {
	db := setupDB(t)
	repo := NewUserProfileRepository(db)

	n, err := repo.UpdateWatermark(context.Background(), nil, 42, 99, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestListByIDsKeepsOrder(t *testing.T) {
	db := setupDB(t)
	repo := NewUserProfileRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, nil,
		&model.UserProfile{ChannelID: 1, ID: 1, Nickname: "Alice"},
		&model.UserProfile{ChannelID: 1, ID: 2, Nickname: "Bob"},
		&model.UserProfile{ChannelID: 1, ID: 3, Nickname: "Carol"},
		&model.UserProfile{ChannelID: 2, ID: 4, Nickname: "Dave"},
	))

	got, err := repo.ListByIDs(ctx, nil, 1, []int64{3, 1, 9, 4})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Carol", got[0].Nickname)
	assert.Equal(t, "Alice", got[1].Nickname)
}

func TestChannelMetaLastWriteWins(t *testing.T) {
	db := setupDB(t)
	repo := NewChannelMetaRepository(db)
	ctx := context.Background()

	content, err := repo.Content(ctx, nil, 42, model.MetaTypeTitle)
	require.NoError(t, err)
	assert.Nil(t, content)

	require.NoError(t, repo.Upsert(ctx, nil, &model.ChannelMeta{ChannelID: 42, Type: model.MetaTypeTitle, Content: "old"}))
	require.NoError(t, repo.Upsert(ctx, nil, &model.ChannelMeta{ChannelID: 42, Type: model.MetaTypeTitle, Content: "new"}))

	content, err = repo.Content(ctx, nil, 42, model.MetaTypeTitle)
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, "new", *content)

	var cnt int64
	require.NoError(t, db.Model(&model.ChannelMeta{}).Where("channel_id = ?", 42).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}

func TestMembersJoin(t *testing.T) {
	db := setupDB(t)
	profiles := NewUserProfileRepository(db)
	members := NewMemberRepository(db)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, nil,
		&model.UserProfile{ChannelID: 42, ID: 2, Nickname: "Bob", Watermark: 95},
		&model.UserProfile{ChannelID: 42, ID: 1, Nickname: "Alice", Watermark: 100},
		&model.UserProfile{ChannelID: 42, ID: 3, Nickname: "NoMembership"},
		&model.UserProfile{ChannelID: 43, ID: 1, Nickname: "Elsewhere"},
	))
	require.NoError(t, members.Upsert(ctx, nil,
		&model.NormalChannelUser{ChannelID: 42, ID: 1, CountryISO: "KR", AccountID: 11},
		&model.NormalChannelUser{ChannelID: 42, ID: 2, CountryISO: "JP", AccountID: 22},
		&model.NormalChannelUser{ChannelID: 43, ID: 1},
	))

	got, err := members.ListWithProfiles(ctx, nil, 42)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Profile.Nickname)
	assert.Equal(t, int64(100), got[0].Profile.Watermark)
	assert.Equal(t, "KR", got[0].User.CountryISO)
	assert.Equal(t, int64(11), got[0].User.AccountID)
	assert.Equal(t, "Bob", got[1].Profile.Nickname)
	assert.Equal(t, int64(22), got[1].User.AccountID)
}

func TestChannelListAll(t *testing.T) {
	db := setupDB(t)
	repo := NewChannelListRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, nil,
		&model.ChannelListRow{ID: 3, Type: "MultiChat", DisplayUsers: []int64{1, 2}},
		&model.ChannelListRow{ID: 1, Type: "OM"},
	))

	rows, err := repo.All(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(3), rows[1].ID)
	assert.Equal(t, []int64{1, 2}, []int64(rows[1].DisplayUsers))
}
