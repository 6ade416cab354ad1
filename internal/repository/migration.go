package repository

import (
	"context"
	"errors"
	"time"

	"eduassist-go/internal/model"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/log"
)

// LegacyMigrator 把旧版"每用户一条扁平消息数组"升级为会话列表 + 独立消息记录。
// 迁移完成的唯一标志是旧键被删除，因此重复调用是幂等的。
type LegacyMigrator struct {
	store kvstore.Backend
	keys  Keys
	title string
	newID func() string
	now   func() time.Time
}

// NewLegacyMigrator 创建迁移器，title 是合成会话的标题。
func NewLegacyMigrator(store kvstore.Backend, keys Keys, title string, newID func() string, now func() time.Time) *LegacyMigrator {
	if now == nil {
		now = time.Now
	}
	return &LegacyMigrator{store: store, keys: keys, title: title, newID: newID, now: now}
}

// Migrate 检查旧键，存在非空旧数据时合成一个新会话并置于列表最前，
// 返回更新后的列表。任何失败都只记录日志，旧键依然会被删除以避免反复重试。
func (m *LegacyMigrator) Migrate(ctx context.Context, userID string, sessions []model.Session) []model.Session {
	legacyKey := m.keys.LegacyHistory(userID)
	data, err := m.store.Scope(userID).Get(ctx, legacyKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return sessions
	}
	if err != nil {
		log.Errorf("Failed to read legacy history of user %s: %v", userID, err)
		return sessions
	}
	defer m.removeLegacy(ctx, userID, legacyKey)

	messages, err := model.DecodeMessages(data)
	if err != nil {
		log.Errorf("Legacy history of user %s is corrupt, discarding: %v", userID, err)
		return sessions
	}
	if len(messages) == 0 {
		return sessions
	}

	now := m.now()
	session := model.Session{
		ID:        m.newID(),
		UserID:    userID,
		Title:     m.title,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.StatusActive,
	}

	encoded, err := model.EncodeMessages(messages)
	if err != nil {
		log.Errorf("Failed to encode legacy history of user %s: %v", userID, err)
		return sessions
	}
	msgKey := m.keys.Messages(session.ID)
	if err := m.store.Scope(userID).Set(ctx, msgKey, encoded); err != nil {
		log.Errorf("Failed to write migrated messages of user %s: %v", userID, err)
		return sessions
	}

	migrated := append([]model.Session{session}, sessions...)
	list, err := model.EncodeSessions(migrated)
	if err == nil {
		err = m.store.Scope(userID).Set(ctx, m.keys.Sessions(userID), list)
	}
	if err != nil {
		log.Errorf("Failed to write migrated session list of user %s: %v", userID, err)
		_ = m.store.Scope(userID).Remove(ctx, msgKey)
		return sessions
	}

	log.Infof("Migrated %d legacy messages of user %s into session %s", len(messages), userID, session.ID)
	return migrated
}

func (m *LegacyMigrator) removeLegacy(ctx context.Context, userID, key string) {
	if err := m.store.Scope(userID).Remove(ctx, key); err != nil {
		log.Errorf("Failed to remove legacy history key of user %s: %v", userID, err)
	}
}
