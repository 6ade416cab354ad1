// Package token 提供了用于生成和验证 JSON Web Tokens (JWT) 的功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 负责管理 JWT 的生成和验证。
type JWTManager struct {
	secretKey       []byte        // secretKey 用于签名和验证 token 的密钥
	accessTokenDur  time.Duration // accessTokenDur 定义了 access token 的有效期
	refreshTokenDur time.Duration // refreshTokenDur 定义了 refresh token 的有效期
}

// CustomClaims 定义了我们想要在 JWT 中存储的自定义数据。
// 模拟登录没有服务端用户表，所以整份资料都放进 token。
type CustomClaims struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
	Method  string `json:"method"`
	Role    string `json:"role,omitempty"`
	IsGuest bool   `json:"isGuest"`
	Refresh bool   `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// Profile 是写入 token 的用户资料。
type Profile struct {
	UserID  string
	Name    string
	Email   string
	Avatar  string
	Method  string
	Role    string
	IsGuest bool
}

// NewJWTManager 创建一个新的 JWTManager 实例。
// accessTokenExpireHours: access token 的过期时间（小时）。
// refreshTokenExpireDays: refresh token 的过期时间（天）。
func NewJWTManager(secret string, accessTokenExpireHours, refreshTokenExpireDays int) *JWTManager {
	return &JWTManager{
		secretKey:       []byte(secret),
		accessTokenDur:  time.Hour * time.Duration(accessTokenExpireHours),
		refreshTokenDur: time.Duration(refreshTokenExpireDays) * 24 * time.Hour,
	}
}

// GenerateToken 根据给定的用户资料生成一个新的 access token。
func (m *JWTManager) GenerateToken(p Profile) (string, error) {
	return m.sign(p, m.accessTokenDur, false)
}

// GenerateRefreshToken 生成 refresh token，只能用于换取新的 access token。
func (m *JWTManager) GenerateRefreshToken(p Profile) (string, error) {
	return m.sign(p, m.refreshTokenDur, true)
}

func (m *JWTManager) sign(p Profile, dur time.Duration, refresh bool) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID:  p.UserID,
		Name:    p.Name,
		Email:   p.Email,
		Avatar:  p.Avatar,
		Method:  p.Method,
		Role:    p.Role,
		IsGuest: p.IsGuest,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(dur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	// 使用 HS256 签名方法创建新的 token 对象
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证给定的 token 字符串。
// 如果 token 无效（例如，签名不匹配或已过期），则返回错误。
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 检查签名方法是否为 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Profile 从 claims 中还原用户资料。
func (c *CustomClaims) Profile() Profile {
	return Profile{
		UserID:  c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		Avatar:  c.Avatar,
		Method:  c.Method,
		Role:    c.Role,
		IsGuest: c.IsGuest,
	}
}
