package deck

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/cardpress/binding"
	"github.com/ByLCY/cardpress/layout"
)

// paragraph 是一个待排版的文本片段及其最终样式。
type paragraph struct {
	text  string
	style Style
}

// slot 是一个文本槽位在组装阶段的中间结果。
type slot struct {
	value string // 插值后的完整文本
	block Style  // 决定起始 Y、nudge 与 continue 的样式
	paras []paragraph
}

// Compose 将请求字段套入模板，返回背景、矩形与有序的绘制指令。
// 先解析全部样式以收集字体，再一次性向 Typesetter 申请测量器。
func Compose(tpl *Template, fields binding.Fields, ts Typesetter) (*Scene, error) {
	if tpl == nil {
		return nil, fmt.Errorf("模板为空")
	}
	if ts == nil {
		return nil, fmt.Errorf("typesetter 不能为空")
	}

	slots := make([]slot, 0, len(tpl.Texts))
	var fonts []layout.FontRef
	seen := map[layout.FontRef]bool{}
	addFont := func(f layout.FontRef) {
		if f.Name != "" && !seen[f] {
			seen[f] = true
			fonts = append(fonts, f)
		}
	}

	for _, txt := range tpl.Texts {
		s := planSlot(txt, fields)
		addFont(s.block.font())
		for _, p := range s.paras {
			addFont(p.style.font())
			if p.style.Align == layout.BoldPrefix {
				addFont(p.style.regular())
			}
		}
		slots = append(slots, s)
	}

	m, err := ts.Measurer(fonts...)
	if err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}

	scene := &Scene{
		Card:       tpl.Name,
		Background: binding.Interpolate(tpl.Background, fields),
		Rects:      append([]Rect(nil), tpl.Rects...),
		Ops:        []layout.DrawOp{},
	}
	cursor := 0.0
	for _, s := range slots {
		y := s.block.Y
		if s.block.HasNudge {
			y = layout.Nudge(m, s.value, s.block.font(), s.block.Width, s.block.Y, s.block.NudgeY)
		}
		if s.block.Continue {
			y = math.Max(cursor, y)
		}
		for _, p := range s.paras {
			res := layout.Wrap(m, textBlock(p, y))
			scene.Ops = append(scene.Ops, res.Ops...)
			y = res.NextY
		}
		cursor = y
	}
	return scene, nil
}

func planSlot(txt *TextSpec, fields binding.Fields) slot {
	// 模板引用的字段缺失时按空文本处理；用户文本中的 ${...} 原样保留。
	value := ""
	if hasFields(txt.Style.Value, fields) {
		value = binding.Interpolate(txt.Style.Value, fields)
	}
	s := slot{value: value, block: txt.resolve(value, "")}
	if !s.block.Paragraphs {
		s.block = txt.resolve(value, value)
		s.paras = []paragraph{{text: value, style: s.block}}
		return s
	}
	for _, line := range strings.Split(value, "\n") {
		s.paras = append(s.paras, paragraph{text: line, style: txt.resolve(value, line)})
	}
	return s
}

func hasFields(tmpl string, fields binding.Fields) bool {
	for _, name := range binding.Placeholders(tmpl) {
		if _, ok := fields.Get(name); !ok {
			return false
		}
	}
	return true
}

// resolve 从基础样式出发，依次应用所有匹配的 when 规则。
func (txt *TextSpec) resolve(value, line string) Style {
	style := txt.Style
	applyCases(&style, txt.Cases, value, line)
	return style
}

func applyCases(style *Style, cases []*Case, value, line string) {
	for _, c := range cases {
		if !c.matches(value, line) {
			continue
		}
		for _, set := range c.set {
			set(style)
		}
		applyCases(style, c.Cases, value, line)
	}
}

func (c *Case) matches(value, line string) bool {
	switch c.Kind {
	case MatchEquals:
		return strings.EqualFold(strings.TrimSpace(value), c.Literal)
	case MatchContains:
		return strings.Contains(value, c.Literal)
	case MatchExcludes:
		return !strings.Contains(value, c.Literal)
	case MatchPrefix:
		return line != "" && strings.HasPrefix(line, c.Literal)
	default:
		return false
	}
}

func textBlock(p paragraph, y float64) layout.Block {
	st := p.style
	b := layout.Block{
		Text: p.text,
		Font: st.font(),
		Box: layout.Box{
			X:          st.X,
			Y:          y,
			MaxWidth:   st.Width,
			LineHeight: st.lineHeight(),
			Mode:       st.Align,
		},
		Color: st.Color,
	}
	if st.Align == layout.BoldPrefix && st.Regular != "" {
		b.Regular = st.regular()
	}
	return b
}
