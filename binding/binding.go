package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Fields 保存一次卡牌请求的文本字段，键为字段名（title、body、color 等）。
type Fields map[string]string

// Get 返回字段值，字段名大小写不敏感。
func (f Fields) Get(name string) (string, bool) {
	if v, ok := f[name]; ok {
		return v, true
	}
	for k, v := range f {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Interpolate 将文本中的 ${name} 替换为 fields 中的值。
// 若 fields 为空或字段不存在，则保留原占位符。
func Interpolate(text string, fields Fields) string {
	if len(fields) == 0 {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		name := strings.TrimSpace(groups[1])
		if name == "" {
			return match
		}
		if val, ok := fields.Get(name); ok {
			return val
		}
		return match
	})
}

// Placeholders 列出文本引用的字段名，按出现顺序去重。
func Placeholders(text string) []string {
	var names []string
	seen := map[string]bool{}
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(groups[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
