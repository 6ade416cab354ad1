// Package kvstore 定义了持久化键值存储的契约：同步、按字符串寻址、受容量配额限制。
// 它对应浏览器的 localStorage，所有会话数据都经由它落盘。
// 后端按 owner 划分空间，每个 owner（即每个用户）拥有独立的配额，相当于各自的浏览器 origin。
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound 表示键不存在。
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrQuotaExceeded 表示写入会超出存储配额，写入未生效。
	ErrQuotaExceeded = errors.New("kvstore: quota exceeded")
)

// Store 是持久化键值存储的最小接口。
type Store interface {
	// Get 返回 key 对应的值；不存在时返回 ErrNotFound。
	Get(ctx context.Context, key string) (string, error)
	// Set 写入 key；超出配额时返回 ErrQuotaExceeded，且原值保持不变。
	Set(ctx context.Context, key, value string) error
	// Remove 删除 key；key 不存在时不报错。
	Remove(ctx context.Context, key string) error
}

// SharedOwner 是不属于任何用户的数据（例如本地账号）所在的空间，不受配额限制。
const SharedOwner = "_shared"

// Backend 是按 owner 划分的存储后端。
type Backend interface {
	// Scope 返回 owner 的存储视图，读写和配额都只作用于该 owner。
	Scope(owner string) Store
}

// metered 判断 owner 的写入是否计入配额。
func metered(owner string, quota int64) bool {
	return quota > 0 && owner != SharedOwner
}

// entrySize 是一条记录计入配额的字节数。
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// IsQuotaExceeded 判断 err 是否为配额耗尽错误。
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
