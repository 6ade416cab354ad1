package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eduassist-go/internal/model"
	"eduassist-go/internal/repository"
	"eduassist-go/pkg/hash"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/log"
	"eduassist-go/pkg/token"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnsupportedLogin    = errors.New("unsupported login method")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrMissingEmail        = errors.New("email and password are required")
)

// LoginRequest 是登录或注册请求。Mode 只对邮箱登录有效，取值 login | signup。
type LoginRequest struct {
	Method   model.LoginMethod `json:"method"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Mode     string            `json:"mode"`
	Role     model.UserRole    `json:"role"`
}

// LoginResult 是登录成功后返回的资料和 token。
type LoginResult struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
	now        func() time.Time
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

// Login 处理模拟登录：访客和第三方登录直接生成资料，邮箱登录校验本地账号。
func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	role := req.Role
	if role != model.RoleTeacher {
		role = model.RoleStudent
	}
	ms := s.now().UnixMilli()

	var user model.User
	switch req.Method {
	case model.LoginGuest, "":
		user = model.User{ID: fmt.Sprintf("usr_guest_%d", ms), Name: "Guest Student", Method: model.LoginGuest, IsGuest: true}
	case model.LoginGoogle:
		user = model.User{
			ID:     fmt.Sprintf("usr_google_%d", ms),
			Name:   "Google User",
			Email:  "user@gmail.com",
			Method: model.LoginGoogle,
			Avatar: "https://lh3.googleusercontent.com/a/default-user",
		}
	case model.LoginApple:
		user = model.User{ID: fmt.Sprintf("usr_apple_%d", ms), Name: "Apple User", Email: "user@icloud.com", Method: model.LoginApple}
	case model.LoginEmail:
		var err error
		if req.Mode == "signup" {
			user, err = s.signup(ctx, req, role)
		} else {
			user, err = s.emailLogin(ctx, req)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedLogin
	}
	if user.Role == "" {
		user.Role = role
	}
	if req.Name != "" && req.Method != model.LoginEmail && !user.IsGuest {
		user.Name = req.Name
	}

	log.Infof("[UserService] 用户 %s 通过 %s 登录", user.ID, user.Method)
	return s.issue(user)
}

func (s *userService) signup(ctx context.Context, req LoginRequest, role model.UserRole) (model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.User{}, ErrMissingEmail
	}
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	account := &model.LocalAccount{
		User:         model.User{ID: uuid.NewString(), Name: name, Email: email, Method: model.LoginEmail, Role: role},
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return model.User{}, err
		}
		log.Errorf("[UserService] 创建本地账号失败, email: %s, error: %v", email, err)
		return model.User{}, fmt.Errorf("创建本地账号失败: %w", err)
	}
	return account.User, nil
}

func (s *userService) emailLogin(ctx context.Context, req LoginRequest) (model.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return model.User{}, ErrMissingEmail
	}
	account, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !hash.CheckPasswordHash(req.Password, account.PasswordHash) {
		return model.User{}, ErrInvalidCredentials
	}
	return account.User, nil
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil || !claims.Refresh {
		return nil, ErrInvalidRefreshToken
	}
	user := UserFromProfile(claims.Profile())
	if user.Method == model.LoginEmail {
		// 邮箱账号需要仍然存在
		account, err := s.userRepo.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, ErrInvalidRefreshToken
		}
		user = account.User
	}
	return s.issue(user)
}

func (s *userService) issue(user model.User) (*LoginResult, error) {
	p := ProfileOf(user)
	access, err := s.jwtManager.GenerateToken(p)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// ProfileOf 把用户资料转换为 token 中携带的资料。
func ProfileOf(u model.User) token.Profile {
	return token.Profile{
		UserID:  u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Avatar:  u.Avatar,
		Method:  string(u.Method),
		Role:    string(u.Role),
		IsGuest: u.IsGuest,
	}
}

// UserFromProfile 从 token 资料还原用户。
func UserFromProfile(p token.Profile) model.User {
	return model.User{
		ID:      p.UserID,
		Name:    p.Name,
		Email:   p.Email,
		Avatar:  p.Avatar,
		Method:  model.LoginMethod(p.Method),
		Role:    model.UserRole(p.Role),
		IsGuest: p.IsGuest,
	}
}
