package assets

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Fallback 根据字体名推断字重与斜体，返回对应的内置 Go 字体。
// 卡面字体缺失时用它代替，保证服务仍能出图。
func Fallback(name string) []byte {
	s := strings.ToLower(name)
	bold := strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy")
	italic := strings.Contains(s, "italic") || strings.Contains(s, "oblique")
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
