package layout

import "strings"

// 加粗前缀模式下，切换字体但不换行的词（小写比较）。
var switchKeepsLine = map[string]bool{
	"action:":  true,
	"for:":     true,
	"against:": true,
}

// 切换字体后为后续折行设置缩进的词（议程卡的投票提示）。
var switchIndents = map[string]bool{
	"for:":     true,
	"against:": true,
}

const votingIndent = 20

// Wrap 按 Box.Mode 将文本排成若干行并返回绘制指令。
// 引擎没有错误分支：空文本不产生指令，但 NextY 仍按段落间距前进。
func Wrap(m Measurer, b Block) Result {
	switch b.Box.Mode {
	case CenterBoth:
		return wrapCenterBoth(m, b)
	case BoldPrefix:
		return wrapBoldPrefix(m, b)
	default:
		return wrapLines(m, b)
	}
}

type line struct {
	text  string
	width float64
}

// words 按单个空格切分，并丢弃空词。
func words(text string) []string {
	parts := strings.Split(text, " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// greedyFill 贪心填充：当前行放不下下一个词时换行。每个词后附带一个空格，
// width 累计词宽与空格宽。单个超宽词独占一行，不做截断。
func greedyFill(m Measurer, text string, font FontRef, maxWidth, spaceW float64) []line {
	var lines []line
	var buf strings.Builder
	width := 0.0
	for _, word := range words(text) {
		w, _ := m.Measure(word, font)
		if buf.Len() > 0 && width+w > maxWidth {
			lines = append(lines, line{text: buf.String(), width: width})
			buf.Reset()
			width = 0
		}
		buf.WriteString(word)
		buf.WriteByte(' ')
		width += w + spaceW
	}
	if buf.Len() > 0 {
		lines = append(lines, line{text: buf.String(), width: width})
	}
	return lines
}

// wrapLines 处理 Left 与 Center 两种模式。
func wrapLines(m Measurer, b Block) Result {
	box := b.Box
	spaceW, _ := m.Measure(" ", b.Font)
	lines := greedyFill(m, b.Text, b.Font, box.MaxWidth, spaceW)

	ops := make([]DrawOp, 0, len(lines))
	y := box.Y
	for i, ln := range lines {
		if i > 0 {
			y += box.LineHeight
		}
		x := box.X
		if box.Mode == Center {
			x = box.X - ln.width/2
		}
		ops = append(ops, DrawOp{X: x, Y: y, Text: ln.text, Font: b.Font, Color: b.Color})
	}
	return Result{Ops: ops, NextY: y + box.LineHeight*ParagraphSpacing}
}

// wrapCenterBoth 先按换行符强制分段（空段落生成空行），再逐段贪心填充；
// 整块以 Box.Y 为中心垂直居中，每行按自身测量宽度水平居中。
func wrapCenterBoth(m Measurer, b Block) Result {
	box := b.Box
	spaceW, _ := m.Measure(" ", b.Font)

	var lines []line
	for _, seg := range strings.Split(b.Text, "\n") {
		segLines := greedyFill(m, seg, b.Font, box.MaxWidth, spaceW)
		if len(segLines) == 0 {
			segLines = []line{{}}
		}
		lines = append(lines, segLines...)
	}

	ops := make([]DrawOp, 0, len(lines))
	y := box.Y - float64(len(lines))*box.LineHeight/2
	for _, ln := range lines {
		if ln.text != "" {
			w, _ := m.Measure(ln.text, b.Font)
			ops = append(ops, DrawOp{X: box.X - w/2, Y: y, Text: ln.text, Font: b.Font, Color: b.Color})
		}
		y += box.LineHeight
	}
	return Result{Ops: ops, NextY: y + box.LineHeight*ParagraphSpacing}
}

// wrapBoldPrefix 逐词绘制（不缓冲整行）。首个以 ":" 或 "." 结尾的词之后永久
// 切换到常规字体，并换到新段落，除非该词属于 switchKeepsLine。
func wrapBoldPrefix(m Measurer, b Block) Result {
	box := b.Box
	font := b.Font
	regular := b.Regular
	if regular == (FontRef{}) {
		regular = b.Font
	}
	bold := true
	spaceW, _ := m.Measure(" ", font)

	var ops []DrawOp
	x, y := box.X, box.Y
	indent := 0.0
	lineEmpty := true
	for _, word := range words(b.Text) {
		w, _ := m.Measure(word, font)
		if !lineEmpty && x+w > box.MaxWidth {
			x = box.X + indent
			y += box.LineHeight
		}
		ops = append(ops, DrawOp{X: x, Y: y, Text: word, Font: font, Color: b.Color})
		lineEmpty = false
		x += w + spaceW

		if bold && (strings.HasSuffix(word, ":") || strings.HasSuffix(word, ".")) {
			bold = false
			font = regular
			spaceW, _ = m.Measure(" ", font)
			key := strings.ToLower(word)
			if !switchKeepsLine[key] {
				x = box.X
				y += box.LineHeight * ParagraphSpacing
				lineEmpty = true
			}
			if switchIndents[key] {
				indent = votingIndent
			}
		}
	}
	if ops == nil {
		ops = []DrawOp{}
	}
	return Result{Ops: ops, NextY: y + box.LineHeight*ParagraphSpacing}
}
