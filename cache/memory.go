package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize 是内存缓存默认保留的卡图数量。
const DefaultSize = 512

type entry struct {
	value    []byte
	deadline time.Time // 仅当 Add 的 ttl 短于缓存有效期时设置
}

// Memory 是进程内的 LRU 缓存，超过容量或有效期的条目会被淘汰。
// 并发安全由 expirable.LRU 保证。
type Memory struct {
	lru    *expirable.LRU[string, entry]
	maxTTL time.Duration
	now    func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory 创建容量为 size、有效期为 maxTTL 的缓存。
// Add 时传入的 ttl 只能缩短条目的有效期。
func NewMemory(size int, maxTTL time.Duration) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	if maxTTL <= 0 {
		maxTTL = DefaultTTL
	}
	return &Memory{
		lru:    expirable.NewLRU[string, entry](size, nil, maxTTL),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if m.expired(e) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Add 在键不存在时写入。并发写入同一键时后写者覆盖，
// 同一键对应同一张卡图，覆盖不影响结果。
func (m *Memory) Add(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if e, ok := m.lru.Peek(key); ok && !m.expired(e) {
		return nil
	}
	e := entry{value: value}
	if ttl > 0 && ttl < m.maxTTL {
		e.deadline = m.now().Add(ttl)
	}
	m.lru.Add(key, e)
	return nil
}

func (m *Memory) expired(e entry) bool {
	return !e.deadline.IsZero() && !m.now().Before(e.deadline)
}

// Len 返回当前条目数。
func (m *Memory) Len() int {
	return m.lru.Len()
}
