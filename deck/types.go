package deck

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ByLCY/cardpress/layout"
)

// 该文件定义卡牌模板与组装结果，供 deck 编译、渲染与调试 JSON 共用。

// ErrUnknownCard 表示请求的卡牌类型不在牌组中。
var ErrUnknownCard = errors.New("未知的卡牌类型")

// KnownFields 是卡牌请求可以携带的全部文本字段。
var KnownFields = []string{"title", "type", "body", "flavor", "footer", "color", "points"}

// Deck 是编译后的牌组：若干卡牌模板，以及参与缓存键计算的版本号。
type Deck struct {
	Name    string
	Version string
	cards   map[string]*Template
}

// Template 按名称查找卡牌模板。
func (d *Deck) Template(name string) (*Template, error) {
	if tpl, ok := d.cards[name]; ok {
		return tpl, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCard, name)
}

// Names 返回排序后的卡牌名称。
func (d *Deck) Names() []string {
	names := make([]string, 0, len(d.cards))
	for name := range d.cards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template 描述一种卡牌：背景图、背景矩形与若干文本槽位。
type Template struct {
	Name       string
	Background string // 可包含 ${field} 占位符
	Rects      []Rect
	Texts      []*TextSpec
}

// Rect 是在文字之前绘制的实心矩形（例如类型栏底色），单位为模板像素。
type Rect struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Color  layout.Color `json:"color"`
}

// TextSpec 描述一个文本槽位：基础样式加上按内容匹配的覆盖规则。
type TextSpec struct {
	Field string
	Style Style
	Cases []*Case
}

// Style 是文本槽位解析后的排版参数。
type Style struct {
	Value      string // 文本模板，默认 "${field}"
	Font       string
	Regular    string // bold-prefix 模式下的常规字体
	Size       float64
	Color      layout.Color
	Align      layout.Mode
	X          float64
	Y          float64
	Width      float64
	LineHeight float64
	HasNudge   bool
	NudgeY     float64 // 单行放不下时使用的起始 Y
	Paragraphs bool    // 按换行符拆段并串联排版
	Continue   bool    // 起始 Y 取 max(上一槽位的 NextY, Y)
}

func (s Style) font() layout.FontRef    { return layout.FontRef{Name: s.Font, Size: s.Size} }
func (s Style) regular() layout.FontRef { return layout.FontRef{Name: s.Regular, Size: s.Size} }

func (s Style) lineHeight() float64 {
	if s.LineHeight > 0 {
		return s.LineHeight
	}
	return s.Size
}

// MatchKind 决定 when 规则与什么内容比较。
type MatchKind int

const (
	MatchEquals   MatchKind = iota // 整个字段值，大小写不敏感
	MatchContains                  // 字段值包含字面量
	MatchExcludes                  // 字段值不包含字面量
	MatchPrefix                    // 当前段落以字面量开头
)

var matchKinds = map[string]MatchKind{
	"equals":   MatchEquals,
	"contains": MatchContains,
	"excludes": MatchExcludes,
	"prefix":   MatchPrefix,
}

type setter func(*Style)

// Case 是一条 when 规则：匹配时依次应用覆盖，再评估嵌套规则。
type Case struct {
	Kind    MatchKind
	Literal string
	set     []setter
	Cases   []*Case
}

// Scene 是一张卡牌组装后的全部绘制内容。
type Scene struct {
	Card       string          `json:"card"`
	Background string          `json:"background"`
	Rects      []Rect          `json:"rects"`
	Ops        []layout.DrawOp `json:"ops"`
}

// Typesetter 为组装阶段提供已加载字体的测量能力。
type Typesetter interface {
	Measurer(fonts ...layout.FontRef) (layout.Measurer, error)
}
