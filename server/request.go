package server

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/cardpress/binding"
)

// Request 是规范化后的卡图请求。
type Request struct {
	Card   string
	Fields binding.Fields
}

// cacheFields 决定缓存键的字段顺序，调整顺序会使旧缓存全部失效。
var cacheFields = []string{"title", "type", "body", "footer", "flavor", "color", "points"}

// ParseRequest 读取查询参数，补默认值并统一大小写。
// 只有缺省的参数才取默认值，显式给出的空值保持为空。
func ParseRequest(q url.Values) Request {
	get := func(name, def string) string {
		if q.Has(name) {
			return q.Get(name)
		}
		return def
	}
	return Request{
		Card: strings.ToLower(get("card", "action")),
		Fields: binding.Fields{
			"title":  strings.ToUpper(get("title", "title")),
			"type":   strings.ToUpper(get("type", "type")),
			"body":   get("body", "body"),
			"flavor": get("flavor", "flavor"),
			"footer": strings.ToUpper(get("footer", "footer")),
			"color":  capitalize(get("color", "White")),
			"points": strings.ToLower(get("points", "1")),
		},
	}
}

// CacheValues 按固定顺序返回参与缓存键的值，卡牌类型在最前。
func (r Request) CacheValues() []string {
	values := make([]string, 0, len(cacheFields)+1)
	values = append(values, r.Card)
	for _, name := range cacheFields {
		values = append(values, r.Fields[name])
	}
	return values
}

// capitalize 首字母大写，其余小写。
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
