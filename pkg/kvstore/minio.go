package kvstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioStore 把每个键存为桶中的一个对象，对象名为 {owner}/{key}。
// 配额按 owner 前缀下全部对象的 key+size 求和计算，写入前做一次列举。
type MinioStore struct {
	client *minio.Client
	bucket string
	quota  int64
}

// NewMinioStore 创建一个基于 MinIO 的 Store，bucket 需已存在。
func NewMinioStore(client *minio.Client, bucket string, quota int64) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, quota: quota}
}

// Scope 返回 owner 的存储视图。
func (s *MinioStore) Scope(owner string) Store {
	return &minioScope{store: s, owner: owner, prefix: url.PathEscape(owner) + "/"}
}

type minioScope struct {
	store  *MinioStore
	owner  string
	prefix string
}

func (s *minioScope) object(key string) string {
	return s.prefix + key
}

func (s *minioScope) Get(ctx context.Context, key string) (string, error) {
	obj, err := s.store.client.GetObject(ctx, s.store.bucket, s.object(key), minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return string(data), nil
}

func (s *minioScope) Set(ctx context.Context, key, value string) error {
	if metered(s.owner, s.store.quota) {
		used, old, err := s.usage(ctx, key)
		if err != nil {
			return err
		}
		if used-old+entrySize(key, value) > s.store.quota {
			return ErrQuotaExceeded
		}
	}
	_, err := s.store.client.PutObject(ctx, s.store.bucket, s.object(key), strings.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func (s *minioScope) Remove(ctx context.Context, key string) error {
	err := s.store.client.RemoveObject(ctx, s.store.bucket, s.object(key), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// usage 返回 owner 的总占用以及 key 当前的占用。
func (s *minioScope) usage(ctx context.Context, key string) (used, current int64, err error) {
	opts := minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}
	for obj := range s.store.client.ListObjects(ctx, s.store.bucket, opts) {
		if obj.Err != nil {
			return 0, 0, fmt.Errorf("failed to list objects of %s: %w", s.owner, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		n := int64(len(name)) + obj.Size
		used += n
		if name == key {
			current = n
		}
	}
	return used, current, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
