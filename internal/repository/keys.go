// Package repository 提供了数据访问层的实现，全部数据经由 kvstore.Backend 持久化，
// 用户数据写在该用户自己的空间里。
package repository

import "strings"

// Keys 生成所有持久化键。Prefix 用于在共享后端中隔离命名空间。
type Keys struct {
	Prefix string
}

// Sessions 是用户会话列表的键。
func (k Keys) Sessions(userID string) string {
	return k.Prefix + "sessions:" + userID
}

// Messages 是单个会话消息记录的键，与会话列表的键相互独立。
func (k Keys) Messages(sessionID string) string {
	return k.Prefix + "messages:" + sessionID
}

// LegacyHistory 是旧版"每用户单线程"历史记录的键，仅作为迁移来源。
func (k Keys) LegacyHistory(userID string) string {
	return k.Prefix + "legacy-history:" + userID
}

// Theme 是主题偏好的键。
func (k Keys) Theme(userID string) string {
	return k.Prefix + "theme-preference:" + userID
}

// Language 是语言偏好的键。
func (k Keys) Language(userID string) string {
	return k.Prefix + "language-preference:" + userID
}

// Onboarded 标记用户已看过引导会话。
func (k Keys) Onboarded(userID string) string {
	return k.Prefix + "onboarded:" + userID
}

// LocalUser 是单个本地邮箱账号的键，邮箱不区分大小写。
func (k Keys) LocalUser(email string) string {
	return k.Prefix + "local-user:" + strings.ToLower(strings.TrimSpace(email))
}
