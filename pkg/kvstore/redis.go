package kvstore

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore 把键值直接存为 Redis 字符串。
// 每个 owner 的键字节数记录在 {namespace}:__sizes:{owner} 哈希中，总占用记录在
// {namespace}:__used:{owner}，用来模拟每个用户各自的浏览器存储配额。
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	quota     int64
}

// NewRedisStore 创建一个基于 Redis 的 Store。
func NewRedisStore(rdb *redis.Client, namespace string, quota int64) *RedisStore {
	return &RedisStore{rdb: rdb, namespace: namespace, quota: quota}
}

// Scope 返回 owner 的存储视图。
func (s *RedisStore) Scope(owner string) Store {
	return &redisScope{
		store:    s,
		owner:    owner,
		sizesKey: s.namespace + ":__sizes:" + owner,
		usedKey:  s.namespace + ":__used:" + owner,
	}
}

type redisScope struct {
	store    *RedisStore
	owner    string
	sizesKey string
	usedKey  string
}

func (s *redisScope) Get(ctx context.Context, key string) (string, error) {
	v, err := s.store.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return v, nil
}

func (s *redisScope) Set(ctx context.Context, key, value string) error {
	rdb := s.store.rdb
	old, err := s.sizeOf(ctx, key)
	if err != nil {
		return err
	}
	size := entrySize(key, value)
	if metered(s.owner, s.store.quota) {
		used, err := rdb.Get(ctx, s.usedKey).Int64()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to read quota usage of %s: %w", s.owner, err)
		}
		if used-old+size > s.store.quota {
			return ErrQuotaExceeded
		}
	}

	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.HSet(ctx, s.sizesKey, key, size)
		pipe.IncrBy(ctx, s.usedKey, size-old)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *redisScope) Remove(ctx context.Context, key string) error {
	old, err := s.sizeOf(ctx, key)
	if err != nil {
		return err
	}
	_, err = s.store.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HDel(ctx, s.sizesKey, key)
		if old > 0 {
			pipe.DecrBy(ctx, s.usedKey, old)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

func (s *redisScope) sizeOf(ctx context.Context, key string) (int64, error) {
	n, err := s.store.rdb.HGet(ctx, s.sizesKey, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read size of %s: %w", key, err)
	}
	return n, nil
}
