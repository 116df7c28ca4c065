package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound 表示资源目录中没有对应的字体或图片。
var ErrNotFound = errors.New("资源不存在")

// Store 提供卡牌模板所需的字体与背景图字节。
type Store interface {
	Font(name string) ([]byte, error)
	Image(name string) ([]byte, error)
}

// Dir 从目录读取资源，名称必须是目录内的相对路径。
type Dir struct {
	Root string
}

var _ Store = Dir{}

func (d Dir) Font(name string) ([]byte, error)  { return d.read(name) }
func (d Dir) Image(name string) ([]byte, error) { return d.read(name) }

func (d Dir) read(name string) ([]byte, error) {
	if d.Root == "" {
		return nil, fmt.Errorf("未指定资源目录，无法读取 %s", name)
	}
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("资源名 %q 超出资源目录", name)
	}
	data, err := os.ReadFile(filepath.Join(d.Root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("读取资源 %s 失败: %w", name, err)
	}
	return data, nil
}

// Memory 保存注入的资源，主要用于测试与嵌入式部署。
type Memory struct {
	Fonts  map[string][]byte
	Images map[string][]byte
}

var _ Store = Memory{}

func (m Memory) Font(name string) ([]byte, error)  { return lookup(m.Fonts, name) }
func (m Memory) Image(name string) ([]byte, error) { return lookup(m.Images, name) }

func lookup(blobs map[string][]byte, name string) ([]byte, error) {
	if blob, ok := blobs[name]; ok && len(blob) > 0 {
		return blob, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}
