package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/headless-talk/internal/channel"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/pkg/response"
)

type displayUserDTO struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"image_url,omitempty"`
}

type channelItemDTO struct {
	ID            int64            `json:"id"`
	Kind          string           `json:"kind"`
	Name          string           `json:"name"`
	ImageURL      *string          `json:"image_url,omitempty"`
	DisplayUsers  []displayUserDTO `json:"display_users"`
	LastChatLogID *int64           `json:"last_chat_log_id,omitempty"`
	LastSeenLogID *int64           `json:"last_seen_log_id,omitempty"`
	LastUpdate    int64            `json:"last_update"`
	UnreadCount   int64            `json:"unread_count"`
}

type memberDTO struct {
	ID            int64  `json:"id"`
	Nickname      string `json:"nickname"`
	ProfileURL    string `json:"profile_url,omitempty"`
	Watermark     int64  `json:"watermark"`
	AccountID     int64  `json:"account_id"`
	CountryISO    string `json:"country_iso,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
	Suspended     bool   `json:"suspended"`
}

type statusRequest struct {
	Status protocol.ClientStatus `json:"status" binding:"required"`
}

func channelID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid channel id")
		return 0, false
	}
	return id, true
}

// ListChannels 本地频道列表
// @Summary 频道列表
// @Tags 频道
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 500 {object} response.Response
// @Router /api/v1/channels [get]
func (h *Handler) ListChannels(c *gin.Context) {
	entries, err := h.client.ChannelList(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	list := make([]channelItemDTO, 0, len(entries))
	for _, e := range entries {
		users := make([]displayUserDTO, len(e.Item.DisplayUsers))
		for i, u := range e.Item.DisplayUsers {
			users[i] = displayUserDTO{ID: u.ID, Nickname: u.Nickname, ImageURL: u.ImageURL}
		}
		list = append(list, channelItemDTO{
			ID:            e.ID,
			Kind:          e.Item.Kind.String(),
			Name:          e.Item.Profile.Name,
			ImageURL:      e.Item.Profile.ImageURL,
			DisplayUsers:  users,
			LastChatLogID: e.Item.LastChatLogID,
			LastSeenLogID: e.Item.LastSeenLogID,
			LastUpdate:    e.Item.LastUpdate,
			UnreadCount:   e.Item.UnreadCount,
		})
	}
	response.Success(c, gin.H{"list": list})
}

// OpenChannel 打开频道并同步已读水位
// @Summary 打开频道
// @Tags 频道
// @Param id path int true "频道ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/channels/{id}/open [post]
func (h *Handler) OpenChannel(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	ch, err := h.client.OpenChannel(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if ch == nil {
		response.NotFound(c, "unsupported channel")
		return
	}
	response.Success(c, gin.H{"id": ch.ID(), "kind": ch.Kind.String()})
}

// ListMembers 频道成员
// @Summary 频道成员列表
// @Tags 频道
// @Param id path int true "频道ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/channels/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	users, err := channel.NewNormalChannel(id, h.client).Users(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	list := make([]memberDTO, len(users))
	for i, u := range users {
		list[i] = memberDTO{
			ID:            u.ID,
			Nickname:      u.Profile.Nickname,
			ProfileURL:    u.Profile.ProfileURL,
			Watermark:     u.Profile.Watermark,
			AccountID:     u.Normal.AccountID,
			CountryISO:    u.Normal.CountryISO,
			StatusMessage: u.Normal.StatusMessage,
			Suspended:     u.Normal.Suspended,
		}
	}
	response.Success(c, gin.H{"list": list})
}

// SetStatus 上报锁屏状态
// @Summary 设置客户端状态
// @Tags 客户端
// @Accept json
// @Param request body statusRequest true "1 解锁 / 2 锁定"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/status [put]
func (h *Handler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !req.Status.Valid() {
		response.BadRequest(c, "invalid status")
		return
	}
	if err := h.client.SetStatus(c.Request.Context(), req.Status); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
