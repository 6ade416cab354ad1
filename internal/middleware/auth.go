// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eduassist-go/internal/model"
	"eduassist-go/internal/service"
	"eduassist-go/pkg/token"
)

// ContextUserKey 是 gin 上下文中保存当前用户的键。
const ContextUserKey = "user"

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 模拟登录没有服务端用户表，token 中的资料就是完整的用户信息。
func AuthMiddleware(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "请求未包含授权头", "data": nil})
			return
		}

		// Token 以 "Bearer <token>" 的形式提供
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的授权头格式", "data": nil})
			return
		}

		user, ok := UserFromToken(jwtManager, strings.TrimPrefix(authHeader, bearerPrefix))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效或已过期的 token", "data": nil})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// UserFromToken 校验 access token 并还原用户，refresh token 不能用于访问接口。
func UserFromToken(jwtManager *token.JWTManager, tokenString string) (model.User, bool) {
	claims, err := jwtManager.VerifyToken(tokenString)
	if err != nil || claims.Refresh || claims.UserID == "" {
		return model.User{}, false
	}
	return service.UserFromProfile(claims.Profile()), true
}

// CurrentUser 返回 AuthMiddleware 存入的用户。
func CurrentUser(c *gin.Context) model.User {
	return c.MustGet(ContextUserKey).(model.User)
}
