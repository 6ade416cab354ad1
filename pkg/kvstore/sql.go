package kvstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry 对应 kv_entries 表中的一行，(owner, k) 唯一。
type Entry struct {
	Owner string `gorm:"column:owner;primaryKey;type:varchar(191)"`
	Key   string `gorm:"column:k;primaryKey;type:varchar(191)"`
	Value string `gorm:"column:v;type:longtext;not null"`
	Size  int64  `gorm:"column:size;not null"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLStore 是 GORM 上的键值存储，MySQL 和 SQLite 共用同一实现。
// 配额按 owner 求 SUM(size)。
type SQLStore struct {
	db    *gorm.DB
	quota int64
}

// NewSQLStore 创建 SQLStore 并确保表结构存在。
func NewSQLStore(db *gorm.DB, quota int64) (*SQLStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &SQLStore{db: db, quota: quota}, nil
}

// Scope 返回 owner 的存储视图。
func (s *SQLStore) Scope(owner string) Store {
	return &sqlScope{store: s, owner: owner}
}

type sqlScope struct {
	store *SQLStore
	owner string
}

func (s *sqlScope) Get(ctx context.Context, key string) (string, error) {
	var e Entry
	err := s.store.db.WithContext(ctx).Where("owner = ? AND k = ?", s.owner, key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *sqlScope) Set(ctx context.Context, key, value string) error {
	size := entrySize(key, value)
	return s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if metered(s.owner, s.store.quota) {
			var used int64
			if err := tx.Model(&Entry{}).Where("owner = ?", s.owner).Select("COALESCE(SUM(size), 0)").Scan(&used).Error; err != nil {
				return fmt.Errorf("failed to read quota usage of %s: %w", s.owner, err)
			}
			var old Entry
			err := tx.Select("size").Where("owner = ? AND k = ?", s.owner, key).Take(&old).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read size of %s: %w", key, err)
			}
			if used-old.Size+size > s.store.quota {
				return ErrQuotaExceeded
			}
		}
		entry := Entry{Owner: s.owner, Key: key, Value: value, Size: size}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
		return nil
	})
}

func (s *sqlScope) Remove(ctx context.Context, key string) error {
	if err := s.store.db.WithContext(ctx).Where("owner = ? AND k = ?", s.owner, key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
