package layout

import (
	"fmt"
	"strings"
)

// 该文件定义排版引擎的输入与输出类型，供卡牌组装、渲染与调试 JSON 共用。

// ParagraphSpacing 是一段文字排完后额外下移的行高倍数。
const ParagraphSpacing = 1.5

// Mode 表示文本块的对齐/换行策略。
type Mode int

const (
	Left       Mode = iota // 左对齐
	Center                 // 以 X 为中心水平居中
	CenterBoth             // 水平居中，并以 Y 为中心垂直居中
	BoldPrefix             // 粗体前缀，遇到 ":" 或 "." 结尾的词后切换为常规字体
)

var modeNames = map[Mode]string{
	Left:       "left",
	Center:     "center",
	CenterBoth: "center-both",
	BoldPrefix: "bold-prefix",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText 让 Mode 在调试 JSON 中输出可读名称。
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode 解析 left/center/center-both/bold-prefix（大小写不敏感）。
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return Left, fmt.Errorf("未知的对齐方式 %q", s)
}

// FontRef 通过字体资源名与像素字号引用一个字体。
type FontRef struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Box 描述文本块的起点、最大宽度、行高与对齐方式。
// 居中类模式下 X 为中心线；BoldPrefix 模式下 MaxWidth 是绝对右边界。
type Box struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	MaxWidth   float64 `json:"maxWidth"`
	LineHeight float64 `json:"lineHeight"`
	Mode       Mode    `json:"mode"`
}

// Block 是一次排版调用的全部输入。
type Block struct {
	Text    string  `json:"text"`
	Font    FontRef `json:"font"`              // BoldPrefix 模式下为粗体
	Regular FontRef `json:"regular,omitempty"` // 仅 BoldPrefix 模式使用
	Box     Box     `json:"box"`
	Color   Color   `json:"color"`
}

// DrawOp 是一条"在 (X, Y) 处绘制文本"的指令，Y 为文字顶部。
type DrawOp struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Font  FontRef `json:"font"`
	Color Color   `json:"color"`
}

// Result 保存排版生成的绘制指令，以及下一段落的起始 Y。
type Result struct {
	Ops   []DrawOp `json:"ops"`
	NextY float64  `json:"nextY"`
}

// Measurer 返回给定字体下字符串的像素宽高。
type Measurer interface {
	Measure(text string, font FontRef) (width, height float64)
}

// TextDrawer 是执行 DrawOp 的渲染协作方。
type TextDrawer interface {
	DrawText(x, y float64, text string, font FontRef, col Color)
}
