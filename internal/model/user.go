package model

import "strings"

// LoginMethod 是模拟登录的方式。
type LoginMethod string

const (
	LoginGoogle LoginMethod = "google"
	LoginApple  LoginMethod = "apple"
	LoginEmail  LoginMethod = "email"
	LoginPhone  LoginMethod = "phone"
	LoginGuest  LoginMethod = "guest"
)

// UserRole 区分学生与教师，影响欢迎语。
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// User 是登录后的用户资料。
type User struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email,omitempty"`
	Avatar  string      `json:"avatar,omitempty"`
	IsGuest bool        `json:"isGuest"`
	Method  LoginMethod `json:"method"`
	Role    UserRole    `json:"role,omitempty"`
	Grade   string      `json:"grade,omitempty"`
	Section string      `json:"section,omitempty"`
	DOB     string      `json:"dob,omitempty"`
}

// DisplayName 返回用于问候语的名字，访客名返回空串。
func (u User) DisplayName() string {
	if strings.Contains(strings.ToLower(u.Name), "guest") {
		return ""
	}
	return u.Name
}

// LocalAccount 是本地邮箱账号，只保存密码哈希。
type LocalAccount struct {
	User
	PasswordHash string `json:"passwordHash"`
}
