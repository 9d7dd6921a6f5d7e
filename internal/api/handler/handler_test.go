package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/headless-talk/internal/channel"
	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/internal/repository"
	"github.com/d60-Lab/headless-talk/internal/session"
	"github.com/d60-Lab/headless-talk/internal/talk"
	"github.com/d60-Lab/headless-talk/pkg/database"
	"github.com/d60-Lab/headless-talk/pkg/response"
)

type stubClient struct {
	pool     *pool.Pool
	channels map[int64]*channel.ClientChannel
	openErr  error
	entries  []talk.ChannelListEntry
	listErr  error
	statuses []protocol.ClientStatus
}

func (s *stubClient) Pool() *pool.Pool { return s.pool }

func (s *stubClient) OpenChannel(ctx context.Context, id int64) (*channel.ClientChannel, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.channels[id], nil
}

func (s *stubClient) ChannelList(ctx context.Context) ([]talk.ChannelListEntry, error) {
	return s.entries, s.listErr
}

func (s *stubClient) SetStatus(ctx context.Context, status protocol.ClientStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *stubClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.OpenMemory()
	require.NoError(t, err)
	p := pool.New(db, 1, 8)
	t.Cleanup(p.Close)

	stub := &stubClient{pool: p, channels: map[int64]*channel.ClientChannel{}}
	return NewRouter(New(stub), "test"), stub
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestOpenChannelRoute(t *testing.T) {
	r, stub := setupRouter(t)
	stub.channels[42] = &channel.ClientChannel{Kind: channel.KindNormal, Normal: channel.NewNormalChannel(42, stub)}

	w, resp := do(t, r, http.MethodPost, "/api/v1/channels/42/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(42), data["id"])
	assert.Equal(t, "normal", data["kind"])

	w, resp = do(t, r, http.MethodPost, "/api/v1/channels/7/open", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unsupported channel", resp.Message)

	w, _ = do(t, r, http.MethodPost, "/api/v1/channels/abc/open", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	r, stub := setupRouter(t)

	stub.openErr = &talk.ClientError{Op: "open_channel", Err: &session.RequestError{Method: protocol.MethodChatOn, Status: -1}}
	w, _ := do(t, r, http.MethodPost, "/api/v1/channels/1/open", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	stub.listErr = &talk.ClientError{Op: "channel_list", Err: &pool.StoreError{Err: errors.New("no such table")}}
	w, _ = do(t, r, http.MethodGet, "/api/v1/channels", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListChannelsRoute(t *testing.T) {
	r, stub := setupRouter(t)
	img := "https://img/a.png"
	stub.entries = []talk.ChannelListEntry{{ID: 3, Item: &channel.ChannelListItem{
		Kind:         channel.KindNormal,
		Profile:      channel.ListChannelProfile{Name: "Alice, Bob", ImageURL: &img},
		DisplayUsers: []channel.DisplayUser{{ID: 1, Nickname: "Alice"}, {ID: 2, Nickname: "Bob"}},
		UnreadCount:  4,
	}}}

	w, resp := do(t, r, http.MethodGet, "/api/v1/channels", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := resp.Data.(map[string]interface{})["list"].([]interface{})
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "Alice, Bob", item["name"])
	assert.Equal(t, img, item["image_url"])
	assert.Equal(t, float64(4), item["unread_count"])
	assert.Len(t, item["display_users"], 2)
}

func TestListMembersRoute(t *testing.T) {
	r, stub := setupRouter(t)
	ctx := context.Background()
	require.NoError(t, repository.NewUserProfileRepository(stub.pool.DB()).Upsert(ctx, nil,
		&model.UserProfile{ChannelID: 42, ID: 1, Nickname: "Alice", Watermark: 9}))
	require.NoError(t, repository.NewMemberRepository(stub.pool.DB()).Upsert(ctx, nil,
		&model.NormalChannelUser{ChannelID: 42, ID: 1, AccountID: 100}))

	w, resp := do(t, r, http.MethodGet, "/api/v1/channels/42/members", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := resp.Data.(map[string]interface{})["list"].([]interface{})
	require.Len(t, list, 1)
	m := list[0].(map[string]interface{})
	assert.Equal(t, "Alice", m["nickname"])
	assert.Equal(t, float64(9), m["watermark"])
	assert.Equal(t, float64(100), m["account_id"])
}

func TestSetStatusRoute(t *testing.T) {
	r, stub := setupRouter(t)

	w, _ := do(t, r, http.MethodPut, "/api/v1/status", `{"status":2}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []protocol.ClientStatus{protocol.ClientStatusLocked}, stub.statuses)

	w, _ = do(t, r, http.MethodPut, "/api/v1/status", `{"status":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPut, "/api/v1/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
