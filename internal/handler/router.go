package handler

import (
	"github.com/gin-gonic/gin"

	"eduassist-go/internal/middleware"
	"eduassist-go/pkg/token"
)

// Handlers 汇总了注册路由所需的全部处理器。
type Handlers struct {
	Auth       *AuthHandler
	Session    *SessionHandler
	Chat       *ChatHandler
	Preference *PreferenceHandler
}

// RegisterRoutes 在 r 上注册全部 API 路由。
func RegisterRoutes(r *gin.Engine, jwtManager *token.JWTManager, h Handlers) {
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组，无需认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refreshToken", h.Auth.RefreshToken)
		}

		authed := apiV1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			authed.GET("/me/bootstrap", h.Session.Bootstrap)

			sessions := authed.Group("/sessions")
			{
				sessions.GET("", h.Session.List)
				sessions.POST("/new", h.Session.New)
				sessions.GET("/current", h.Session.Current)
				sessions.GET("/search", h.Session.Search)
				sessions.POST("/:id/select", h.Session.Select)
				sessions.GET("/:id/messages", h.Session.Messages)
				sessions.POST("/:id/branch", h.Session.Branch)
				sessions.PUT("/:id/status", h.Session.SetStatus)
				sessions.DELETE("/:id", h.Session.Delete)
				sessions.POST("/:id/identity", h.Session.Identity)
				sessions.PUT("/:id/messages/:mid/feedback", h.Session.Feedback)
			}
			authed.GET("/messages/search", h.Session.SearchMessages)

			authed.POST("/chat/messages", h.Chat.Send)
			authed.POST("/speech", h.Chat.Speak)

			prefs := authed.Group("/preferences")
			{
				prefs.GET("/theme", h.Preference.GetTheme)
				prefs.PUT("/theme", h.Preference.SetTheme)
				prefs.GET("/language", h.Preference.GetLanguage)
				prefs.PUT("/language", h.Preference.SetLanguage)
			}
			authed.GET("/knowledge", h.Preference.Knowledge)
		}
	}

	// Chat 路由 (WebSocket)，token 放在路径中
	r.GET("/chat/:token", h.Chat.Handle)
}
