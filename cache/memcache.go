package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Client 是 Memcache 用到的 gomemcache 方法子集，便于测试替换。
type Client interface {
	Get(key string) (*memcache.Item, error)
	Add(item *memcache.Item) error
}

// Memcache 把卡图存到 memcached，多个实例可共享缓存。
type Memcache struct {
	client Client
}

var _ Cache = (*Memcache)(nil)

// NewMemcache 连接给定的 memcached 地址（host:port）。
func NewMemcache(servers ...string) *Memcache {
	return &Memcache{client: memcache.New(servers...)}
}

// NewMemcacheClient 使用已有的客户端。
func NewMemcacheClient(c Client) *Memcache {
	return &Memcache{client: c}
}

func (m *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取 memcache %s 失败: %w", key, err)
	}
	return item.Value, true, nil
}

func (m *Memcache) Add(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := &memcache.Item{Key: key, Value: value, Expiration: int32(ttl / time.Second)}
	err := m.client.Add(item)
	if err == nil || errors.Is(err, memcache.ErrNotStored) {
		return nil
	}
	return fmt.Errorf("写入 memcache %s 失败: %w", key, err)
}
