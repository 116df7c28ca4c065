package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// DefaultTTL 是卡图缓存的默认有效期。
const DefaultTTL = time.Hour

// Cache 保存渲染好的卡图字节。
// Add 只在键不存在时写入，已存在视为成功。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key 按顺序写入带长度前缀的 values 与版本号，返回其 SHA-256 十六进制摘要。
// 长度前缀使 ("AB", "C") 与 ("A", "BC") 得到不同的键。版本号变化时旧的缓存自然失效。
func Key(version string, values ...string) string {
	h := sha256.New()
	for _, v := range values {
		h.Write([]byte(strconv.Itoa(len(v))))
		h.Write([]byte{':'})
		h.Write([]byte(v))
	}
	h.Write([]byte(version))
	return hex.EncodeToString(h.Sum(nil))
}

// Nop 不缓存任何内容。
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Add(context.Context, string, []byte, time.Duration) error { return nil }
