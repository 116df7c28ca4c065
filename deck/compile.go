package deck

import (
	"embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ByLCY/cardpress/binding"
	"github.com/ByLCY/cardpress/dsl"
	"github.com/ByLCY/cardpress/layout"
)

//go:embed ti4.deck
var deckFS embed.FS

// Default 返回内置的牌组定义。
func Default() (*Deck, error) {
	file, err := deckFS.Open("ti4.deck")
	if err != nil {
		return nil, fmt.Errorf("读取内置牌组失败: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// Load 解析并编译牌组文件。
func Load(r io.Reader) (*Deck, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析牌组失败: %w", err)
	}
	return Compile(doc)
}

// Compile 将 DSL AST 编译为卡牌模板，并校验所有键、颜色与对齐方式。
func Compile(doc *dsl.Deck) (*Deck, error) {
	if doc == nil {
		return nil, fmt.Errorf("牌组为空")
	}
	d := &Deck{Name: doc.Name, Version: doc.Version, cards: map[string]*Template{}}
	for _, card := range doc.Cards {
		name := strings.ToLower(card.Name)
		if _, dup := d.cards[name]; dup {
			return nil, fmt.Errorf("%s: 卡牌 %s 重复定义", card.Pos, name)
		}
		tpl, err := compileCard(card)
		if err != nil {
			return nil, fmt.Errorf("卡牌 %s: %w", name, err)
		}
		d.cards[name] = tpl
	}
	return d, nil
}

func compileCard(card *dsl.Card) (*Template, error) {
	tpl := &Template{Name: strings.ToLower(card.Name)}
	for _, stmt := range card.Body.Statements {
		if a := stmt.Assignment; a != nil {
			if a.Key != "background" {
				return nil, fmt.Errorf("%s: 未知的卡牌属性 %s", a.Pos, a.Key)
			}
			tpl.Background = joinValues(a)
			if err := checkPlaceholders(tpl.Background); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Pos, err)
			}
			continue
		}
		el := stmt.Element
		switch el.Kind {
		case "rect":
			rect, err := compileRect(el)
			if err != nil {
				return nil, err
			}
			tpl.Rects = append(tpl.Rects, rect)
		case "text":
			spec, err := compileText(el)
			if err != nil {
				return nil, err
			}
			tpl.Texts = append(tpl.Texts, spec)
		default:
			return nil, fmt.Errorf("%s: 未知的元素 %s", el.Pos, el.Kind)
		}
	}
	if tpl.Background == "" {
		return nil, fmt.Errorf("缺少 background")
	}
	return tpl, nil
}

func compileRect(el *dsl.Element) (Rect, error) {
	rect := Rect{Color: layout.Color{A: 255}}
	for _, stmt := range el.Body.Statements {
		a := stmt.Assignment
		if a == nil {
			return Rect{}, fmt.Errorf("%s: rect 内不允许嵌套元素", el.Pos)
		}
		if a.Key == "color" {
			c, err := parseColor(joinValues(a))
			if err != nil {
				return Rect{}, fmt.Errorf("%s: %w", a.Pos, err)
			}
			rect.Color = c
			continue
		}
		v, err := parsePixels(a)
		if err != nil {
			return Rect{}, err
		}
		switch a.Key {
		case "x":
			rect.X = v
		case "y":
			rect.Y = v
		case "width":
			rect.Width = v
		case "height":
			rect.Height = v
		default:
			return Rect{}, fmt.Errorf("%s: 未知的 rect 属性 %s", a.Pos, a.Key)
		}
	}
	return rect, nil
}

func compileText(el *dsl.Element) (*TextSpec, error) {
	if len(el.Args) != 1 {
		return nil, fmt.Errorf("%s: text 需要且仅需要一个字段名", el.Pos)
	}
	field := strings.ToLower(el.Args[0].Text())
	if !isKnownField(field) {
		return nil, fmt.Errorf("%s: 未知的字段 %s", el.Pos, field)
	}
	spec := &TextSpec{
		Field: field,
		Style: Style{
			Value: "${" + field + "}",
			Size:  32,
			Color: layout.Color{R: 255, G: 255, B: 255, A: 255},
			Align: layout.Left,
		},
	}
	for _, stmt := range el.Body.Statements {
		if a := stmt.Assignment; a != nil {
			set, err := compileSetter(a)
			if err != nil {
				return nil, fmt.Errorf("字段 %s: %w", field, err)
			}
			set(&spec.Style)
			continue
		}
		c, err := compileCase(stmt.Element)
		if err != nil {
			return nil, fmt.Errorf("字段 %s: %w", field, err)
		}
		spec.Cases = append(spec.Cases, c)
	}
	if spec.Style.Font == "" {
		return nil, fmt.Errorf("%s: 字段 %s 缺少 font", el.Pos, field)
	}
	return spec, nil
}

func compileCase(el *dsl.Element) (*Case, error) {
	if el.Kind != "when" {
		return nil, fmt.Errorf("%s: text 内只允许 when 规则，得到 %s", el.Pos, el.Kind)
	}
	if len(el.Args) != 2 || el.Args[1].String == nil {
		return nil, fmt.Errorf(`%s: when 规则格式为 when <equals|contains|excludes|prefix> "<文本>"`, el.Pos)
	}
	kind, ok := matchKinds[el.Args[0].Text()]
	if !ok {
		return nil, fmt.Errorf("%s: 未知的匹配方式 %s", el.Pos, el.Args[0].Text())
	}
	c := &Case{Kind: kind, Literal: el.Args[1].Text()}
	for _, stmt := range el.Body.Statements {
		if a := stmt.Assignment; a != nil {
			set, err := compileSetter(a)
			if err != nil {
				return nil, err
			}
			c.set = append(c.set, set)
			continue
		}
		nested, err := compileCase(stmt.Element)
		if err != nil {
			return nil, err
		}
		c.Cases = append(c.Cases, nested)
	}
	return c, nil
}

// compileSetter 校验一条文本属性赋值，并返回应用它的闭包。
func compileSetter(a *dsl.Assignment) (setter, error) {
	raw := joinValues(a)
	switch a.Key {
	case "value":
		if err := checkPlaceholders(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", a.Pos, err)
		}
		return func(s *Style) { s.Value = raw }, nil
	case "font":
		return func(s *Style) { s.Font = raw }, nil
	case "regular":
		return func(s *Style) { s.Regular = raw }, nil
	case "color":
		c, err := parseColor(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Pos, err)
		}
		return func(s *Style) { s.Color = c }, nil
	case "align":
		mode, err := layout.ParseMode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Pos, err)
		}
		return func(s *Style) { s.Align = mode }, nil
	case "paragraphs", "continue":
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %s 需要 true/false: %w", a.Pos, a.Key, err)
		}
		if a.Key == "paragraphs" {
			return func(s *Style) { s.Paragraphs = on }, nil
		}
		return func(s *Style) { s.Continue = on }, nil
	}

	v, err := parsePixels(a)
	if err != nil {
		return nil, err
	}
	switch a.Key {
	case "size":
		return func(s *Style) { s.Size = v }, nil
	case "x":
		return func(s *Style) { s.X = v }, nil
	case "y":
		return func(s *Style) { s.Y = v }, nil
	case "width":
		return func(s *Style) { s.Width = v }, nil
	case "line-height":
		return func(s *Style) { s.LineHeight = v }, nil
	case "nudge":
		return func(s *Style) { s.HasNudge, s.NudgeY = true, v }, nil
	}
	return nil, fmt.Errorf("%s: 未知的文本属性 %s", a.Pos, a.Key)
}

func joinValues(a *dsl.Assignment) string {
	parts := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		parts = append(parts, v.Text())
	}
	return strings.Join(parts, " ")
}

func parsePixels(a *dsl.Assignment) (float64, error) {
	if len(a.Values) != 1 || a.Values[0].Number == nil {
		return 0, fmt.Errorf("%s: %s 需要一个数值", a.Pos, a.Key)
	}
	l, err := layout.ParseLength(*a.Values[0].Number)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.Pos, err)
	}
	return l.PX(), nil
}

// parseColor 支持 #RGB、#RRGGBB 与 #RRGGBBAA。
func parseColor(value string) (layout.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return layout.Color{}, fmt.Errorf("无效的颜色值 %q", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("无效的颜色值 %q: %w", value, err)
	}
	return layout.Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func isKnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}

func checkPlaceholders(text string) error {
	for _, name := range binding.Placeholders(text) {
		if !isKnownField(strings.ToLower(name)) {
			return fmt.Errorf("未知的占位字段 ${%s}", name)
		}
	}
	return nil
}
