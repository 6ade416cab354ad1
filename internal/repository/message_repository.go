package repository

import (
	"context"
	"errors"
	"fmt"

	"eduassist-go/internal/model"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/log"
)

// SaveResult 描述一次消息保存的结果。
type SaveResult struct {
	// Persisted 为 true 表示本次内容（可能已剥离媒体）已写入存储。
	Persisted bool
	// Evicted 是为腾出空间而被删除的其他会话，按删除顺序排列。
	Evicted []string
	// MediaStripped 为 true 表示最终写入的是剥离了媒体的版本。
	MediaStripped bool
	// Err 是未能保存时最后一次写入的错误。
	Err error
}

// MessageRepository 负责单个会话消息记录的读写。
type MessageRepository interface {
	// LoadMessages 返回会话的消息，不存在或损坏时返回空列表。
	LoadMessages(ctx context.Context, userID, sessionID string) []model.Message
	// SaveMessages 整体覆盖会话的消息记录；遇到配额不足时按淘汰策略恢复。
	// 该方法从不返回错误，失败记录在 SaveResult 中并写日志。
	SaveMessages(ctx context.Context, userID, sessionID string, messages []model.Message) SaveResult
	// DeleteMessages 删除会话的消息记录。
	DeleteMessages(ctx context.Context, userID, sessionID string) error
}

type messageRepository struct {
	store    kvstore.Backend
	keys     Keys
	sessions SessionRepository
	marker   string
}

// NewMessageRepository 创建一个新的 MessageRepository 实例。
// sessions 用于在配额不足时枚举并淘汰其他会话，marker 是剥离媒体后追加到文本的提示。
func NewMessageRepository(store kvstore.Backend, keys Keys, sessions SessionRepository, marker string) MessageRepository {
	return &messageRepository{store: store, keys: keys, sessions: sessions, marker: marker}
}

func (r *messageRepository) LoadMessages(ctx context.Context, userID, sessionID string) []model.Message {
	data, err := r.store.Scope(userID).Get(ctx, r.keys.Messages(sessionID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return []model.Message{}
	}
	if err != nil {
		log.Errorf("Failed to read messages of session %s: %v", sessionID, err)
		return []model.Message{}
	}
	messages, err := model.DecodeMessages(data)
	if err != nil {
		log.Errorf("Messages of session %s are corrupt, treating as empty: %v", sessionID, err)
		return []model.Message{}
	}
	return messages
}

func (r *messageRepository) SaveMessages(ctx context.Context, userID, sessionID string, messages []model.Message) SaveResult {
	var res SaveResult
	data, err := model.EncodeMessages(messages)
	if err != nil {
		log.Errorf("Failed to encode messages of session %s: %v", sessionID, err)
		res.Err = err
		return res
	}

	store := r.store.Scope(userID)
	key := r.keys.Messages(sessionID)
	err = store.Set(ctx, key, data)
	if err == nil {
		res.Persisted = true
		return res
	}
	if !kvstore.IsQuotaExceeded(err) {
		log.Errorf("Failed to save messages of session %s: %v", sessionID, err)
		res.Err = err
		return res
	}

	// 按最久未更新的顺序逐个淘汰其他会话，直到写入成功或没有可淘汰的会话。
	for _, victim := range r.evictionOrder(ctx, userID, sessionID) {
		log.Warnf("Storage quota exceeded while saving session %s, evicting session %s", sessionID, victim.ID)
		r.evict(ctx, userID, victim.ID)
		res.Evicted = append(res.Evicted, victim.ID)

		err = store.Set(ctx, key, data)
		if err == nil {
			res.Persisted = true
			return res
		}
		if !kvstore.IsQuotaExceeded(err) {
			log.Errorf("Failed to save messages of session %s: %v", sessionID, err)
			res.Err = err
			return res
		}
	}

	stripped := StripMedia(messages, r.marker)
	data, err = model.EncodeMessages(stripped)
	if err == nil {
		err = store.Set(ctx, key, data)
	}
	if err != nil {
		log.Errorf("Failed to save messages of session %s even without media: %v", sessionID, err)
		res.Err = fmt.Errorf("failed to save messages: %w", err)
		return res
	}
	log.Warnf("Saved session %s with media removed", sessionID)
	res.Persisted = true
	res.MediaStripped = true
	return res
}

func (r *messageRepository) DeleteMessages(ctx context.Context, userID, sessionID string) error {
	if err := r.store.Scope(userID).Remove(ctx, r.keys.Messages(sessionID)); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

// evictionOrder 返回除 sessionID 外的所有会话，最久未更新的在前。
func (r *messageRepository) evictionOrder(ctx context.Context, userID, sessionID string) []model.Session {
	all := r.sessions.ListSessions(ctx, userID)
	others := make([]model.Session, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ID != sessionID {
			others = append(others, all[i])
		}
	}
	return others
}

func (r *messageRepository) evict(ctx context.Context, userID, sessionID string) {
	if err := r.sessions.DeleteSession(ctx, userID, sessionID); err != nil {
		log.Errorf("Failed to remove evicted session %s from registry: %v", sessionID, err)
	}
	if err := r.DeleteMessages(ctx, userID, sessionID); err != nil {
		log.Errorf("Failed to remove messages of evicted session %s: %v", sessionID, err)
	}
}
