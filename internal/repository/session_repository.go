package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"eduassist-go/internal/model"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/log"
)

// SessionRepository 维护每个用户按 updatedAt 倒序排列的会话列表。
// 所有写操作都是对整个列表 blob 的读-改-写。
type SessionRepository interface {
	// ListSessions 返回用户的全部会话（任意状态），按 updatedAt 倒序。
	// 返回前会执行一次旧数据迁移；列表损坏时返回空列表而不是报错。
	ListSessions(ctx context.Context, userID string) []model.Session
	// UpsertSession 刷新已有会话的 updatedAt（title 非空时同时更新标题），
	// 或插入一条新的 active 会话。
	UpsertSession(ctx context.Context, userID, sessionID, title string) error
	// SetStatus 修改会话状态，会话不存在时什么也不做。
	SetStatus(ctx context.Context, userID, sessionID string, status model.SessionStatus) error
	// DeleteSession 只删除列表中的条目，消息记录由调用方负责删除。
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

type sessionRepository struct {
	store        kvstore.Backend
	keys         Keys
	migrator     *LegacyMigrator
	newChatTitle string
	now          func() time.Time
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
// migrator 为 nil 时不做旧数据迁移。
func NewSessionRepository(store kvstore.Backend, keys Keys, migrator *LegacyMigrator, newChatTitle string, now func() time.Time) SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &sessionRepository{
		store:        store,
		keys:         keys,
		migrator:     migrator,
		newChatTitle: newChatTitle,
		now:          now,
	}
}

func (r *sessionRepository) ListSessions(ctx context.Context, userID string) []model.Session {
	sessions, err := r.load(ctx, userID)
	if err != nil {
		log.Errorf("Failed to load sessions for user %s, treating as empty: %v", userID, err)
		sessions = []model.Session{}
	}
	if r.migrator != nil {
		sessions = r.migrator.Migrate(ctx, userID, sessions)
	}
	sortByRecency(sessions)
	return sessions
}

func (r *sessionRepository) UpsertSession(ctx context.Context, userID, sessionID, title string) error {
	sessions, err := r.load(ctx, userID)
	if err != nil {
		log.Warnf("Session list of user %s is unreadable and will be rebuilt: %v", userID, err)
		sessions = []model.Session{}
	}

	now := r.now()
	found := false
	for i := range sessions {
		if sessions[i].ID == sessionID {
			sessions[i].UpdatedAt = now
			if title != "" {
				sessions[i].Title = title
			}
			found = true
			break
		}
	}
	if !found {
		if title == "" {
			title = r.newChatTitle
		}
		sessions = append([]model.Session{{
			ID:        sessionID,
			UserID:    userID,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
			Status:    model.StatusActive,
		}}, sessions...)
	}

	sortByRecency(sessions)
	return r.save(ctx, userID, sessions)
}

func (r *sessionRepository) SetStatus(ctx context.Context, userID, sessionID string, status model.SessionStatus) error {
	sessions, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	for i := range sessions {
		if sessions[i].ID == sessionID {
			if sessions[i].Status == status {
				return nil
			}
			sessions[i].Status = status
			return r.save(ctx, userID, sessions)
		}
	}
	return nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	sessions, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ID != sessionID {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sessions) {
		return nil
	}
	return r.save(ctx, userID, kept)
}

// load 读取原始列表，键不存在时返回空列表。
func (r *sessionRepository) load(ctx context.Context, userID string) ([]model.Session, error) {
	data, err := r.store.Scope(userID).Get(ctx, r.keys.Sessions(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return []model.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return model.DecodeSessions(data)
}

func (r *sessionRepository) save(ctx context.Context, userID string, sessions []model.Session) error {
	data, err := model.EncodeSessions(sessions)
	if err != nil {
		return err
	}
	if err := r.store.Scope(userID).Set(ctx, r.keys.Sessions(userID), data); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

// sortByRecency 按 updatedAt 倒序，相同时间保持原有顺序。
func sortByRecency(sessions []model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}
