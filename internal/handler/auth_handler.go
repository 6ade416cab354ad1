package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduassist-go/internal/service"
	"eduassist-go/pkg/log"
)

// AuthHandler 负责处理登录和刷新 token 的 API 请求。
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Login 处理模拟登录和邮箱注册。
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		log.Warnf("Login: login failed for method '%s', error: %v", req.Method, err)
		failErr(c, err)
		return
	}
	ok(c, res)
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "无效的请求负载：refreshToken 不能为空")
		return
	}

	res, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh token, error: %v", err)
		fail(c, http.StatusUnauthorized, "无效的 refresh token")
		return
	}

	log.Info("Token refreshed successfully")
	ok(c, gin.H{
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
		"user":         res.User,
	})
}
