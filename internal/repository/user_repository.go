package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"eduassist-go/internal/model"
	"eduassist-go/pkg/kvstore"
)

// ErrAccountExists 表示邮箱已经注册。
var ErrAccountExists = errors.New("account already exists")

// UserRepository 接口定义了本地邮箱账号的持久化操作。
// 每个账号单独一个键，位于共享空间 kvstore.SharedOwner 中。
type UserRepository interface {
	Create(ctx context.Context, account *model.LocalAccount) error
	FindByEmail(ctx context.Context, email string) (*model.LocalAccount, error)
}

type userRepository struct {
	mu    sync.Mutex
	store kvstore.Store
	keys  Keys
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(store kvstore.Backend, keys Keys) UserRepository {
	return &userRepository{store: store.Scope(kvstore.SharedOwner), keys: keys}
}

// Create 新增账号，邮箱不区分大小写。
func (r *userRepository) Create(ctx context.Context, account *model.LocalAccount) error {
	// 检查与写入在锁内完成，同一邮箱只能注册一次
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.keys.LocalUser(account.Email)
	_, err := r.store.Get(ctx, key)
	if err == nil {
		return ErrAccountExists
	}
	if !errors.Is(err, kvstore.ErrNotFound) {
		return fmt.Errorf("failed to read local user: %w", err)
	}
	b, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal local user: %w", err)
	}
	if err := r.store.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("failed to write local user: %w", err)
	}
	return nil
}

// FindByEmail 根据邮箱查找账号，不存在时返回 kvstore.ErrNotFound。
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.LocalAccount, error) {
	data, err := r.store.Get(ctx, r.keys.LocalUser(email))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local user: %w", err)
	}
	var account model.LocalAccount
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal local user: %w", err)
	}
	return &account, nil
}
