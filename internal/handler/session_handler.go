package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduassist-go/internal/middleware"
	"eduassist-go/internal/model"
	"eduassist-go/internal/service"
	"eduassist-go/pkg/log"
)

// SessionHandler 负责会话列表和会话记录相关的 API 请求。
type SessionHandler struct {
	sessionService    service.SessionService
	preferenceService service.PreferenceService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(sessionService service.SessionService, preferenceService service.PreferenceService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, preferenceService: preferenceService}
}

// Bootstrap 返回首屏数据：用户、偏好、会话列表和当前会话。
func (h *SessionHandler) Bootstrap(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	res, err := h.sessionService.Bootstrap(ctx, user)
	if err != nil {
		log.Errorf("Bootstrap failed for user %s: %v", user.ID, err)
		failErr(c, err)
		return
	}
	ok(c, gin.H{
		"user":     user,
		"theme":    h.preferenceService.GetTheme(ctx, user.ID),
		"language": h.preferenceService.GetLanguage(ctx, user.ID),
		"sessions": res.Sessions,
		"current":  res.View,
	})
}

// List 返回会话列表，?all=true 时包含所有状态。
func (h *SessionHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ok(c, h.sessionService.ListSessions(c.Request.Context(), user, c.Query("all") == "true"))
}

// New 切换到新对话。
func (h *SessionHandler) New(c *gin.Context) {
	ok(c, h.sessionService.StartNewSession(c.Request.Context(), middleware.CurrentUser(c)))
}

// Current 返回当前会话。
func (h *SessionHandler) Current(c *gin.Context) {
	ok(c, h.sessionService.Current(c.Request.Context(), middleware.CurrentUser(c)))
}

// Select 打开一个会话。
func (h *SessionHandler) Select(c *gin.Context) {
	view, err := h.sessionService.SelectSession(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, view)
}

// Messages 返回会话的消息记录。
func (h *SessionHandler) Messages(c *gin.Context) {
	msgs, err := h.sessionService.LoadMessages(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, msgs)
}

// BranchRequest 是分支请求体。
type BranchRequest struct {
	MessageID string `json:"messageId" binding:"required"`
}

// Branch 从指定消息处分出新会话。
func (h *SessionHandler) Branch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：messageId 不能为空")
		return
	}
	view, err := h.sessionService.BranchSession(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.MessageID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, view)
}

// StatusRequest 是修改会话状态的请求体。
type StatusRequest struct {
	Status model.SessionStatus `json:"status" binding:"required"`
}

// SetStatus 归档、隐藏或恢复会话。
func (h *SessionHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：status 不能为空")
		return
	}
	view, err := h.sessionService.SetSessionStatus(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Status)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, view)
}

// Delete 删除会话及其消息记录。
func (h *SessionHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	view, err := h.sessionService.DeleteSession(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	log.Infof("User %s deleted session %s", user.ID, c.Param("id"))
	ok(c, view)
}

// Identity 为会话生成 AI 角色名。
func (h *SessionHandler) Identity(c *gin.Context) {
	name, err := h.sessionService.AssignIdentity(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, gin.H{"identity": name})
}

// FeedbackRequest 是对回答的评价。
type FeedbackRequest struct {
	Feedback model.Feedback `json:"feedback" binding:"required"`
}

// Feedback 记录对某条消息的评价。
func (h *SessionHandler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：feedback 不能为空")
		return
	}
	msg, err := h.sessionService.SetFeedback(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), c.Param("mid"), req.Feedback)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, msg)
}

// Search 跨会话检索。
func (h *SessionHandler) Search(c *gin.Context) {
	hits, err := h.sessionService.SearchSessions(c.Request.Context(), middleware.CurrentUser(c), c.Query("q"))
	if err != nil {
		failErr(c, err)
		return
	}
	if hits == nil {
		hits = []model.SessionHit{}
	}
	ok(c, hits)
}

// SearchMessages 在当前会话中过滤消息。
func (h *SessionHandler) SearchMessages(c *gin.Context) {
	msgs := h.sessionService.SearchMessages(c.Request.Context(), middleware.CurrentUser(c), c.Query("q"))
	if msgs == nil {
		msgs = []model.Message{}
	}
	ok(c, msgs)
}
