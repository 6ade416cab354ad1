// Package model 包含了应用的数据模型定义。
package model

import "time"

// SessionStatus 是会话在列表中的可见状态。
type SessionStatus string

const (
	StatusActive   SessionStatus = "active"
	StatusArchived SessionStatus = "archived"
	StatusHidden   SessionStatus = "hidden"
	StatusDeleted  SessionStatus = "deleted"
)

// Valid 判断状态值是否合法。
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusHidden, StatusDeleted:
		return true
	}
	return false
}

// Session 代表一个对话线程，会话列表按用户隔离。
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Status    SessionStatus `json:"status"`
}

// IsActive 缺失状态的旧数据视为 active。
func (s Session) IsActive() bool {
	return s.Status == "" || s.Status == StatusActive
}
