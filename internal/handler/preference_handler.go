package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduassist-go/internal/knowledge"
	"eduassist-go/internal/middleware"
	"eduassist-go/internal/model"
	"eduassist-go/internal/service"
)

// PreferenceHandler 处理主题、语言偏好和知识库列表。
type PreferenceHandler struct {
	preferenceService service.PreferenceService
	kb                *knowledge.Base
}

// NewPreferenceHandler 创建一个新的 PreferenceHandler 实例。
func NewPreferenceHandler(preferenceService service.PreferenceService, kb *knowledge.Base) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService, kb: kb}
}

func (h *PreferenceHandler) GetTheme(c *gin.Context) {
	ok(c, h.preferenceService.GetTheme(c.Request.Context(), middleware.CurrentUser(c).ID))
}

func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var theme model.Theme
	if err := c.ShouldBindJSON(&theme); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	saved, err := h.preferenceService.SetTheme(c.Request.Context(), middleware.CurrentUser(c).ID, theme)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, saved)
}

func (h *PreferenceHandler) GetLanguage(c *gin.Context) {
	ok(c, gin.H{"language": h.preferenceService.GetLanguage(c.Request.Context(), middleware.CurrentUser(c).ID)})
}

// LanguageRequest 是修改界面语言的请求体。
type LanguageRequest struct {
	Language model.Language `json:"language" binding:"required"`
}

func (h *PreferenceHandler) SetLanguage(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：language 不能为空")
		return
	}
	lang, err := h.preferenceService.SetLanguage(c.Request.Context(), middleware.CurrentUser(c).ID, req.Language)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, gin.H{"language": lang})
}

// Knowledge 列出内置知识库，?q= 时只返回相关条目。
func (h *PreferenceHandler) Knowledge(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		items := h.kb.FindRelevant(q)
		if items == nil {
			items = []knowledge.Item{}
		}
		ok(c, items)
		return
	}
	ok(c, h.kb.Items())
}
