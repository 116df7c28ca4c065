package layout

import "strings"

// WrapParagraphs 以换行符拆分段落，逐段调用 Wrap，
// 每段从上一段返回的 NextY 开始。
func WrapParagraphs(m Measurer, b Block) Result {
	ops := []DrawOp{}
	y := b.Box.Y
	for _, para := range strings.Split(b.Text, "\n") {
		pb := b
		pb.Text = para
		pb.Box.Y = y
		res := Wrap(m, pb)
		ops = append(ops, res.Ops...)
		y = res.NextY
	}
	return Result{Ops: ops, NextY: y}
}

// Nudge 在文本单行放得下时返回 yIfFits，否则返回 yIfNot。
// 标题用它在换行时上移起点，避免压住卡面插图。
func Nudge(m Measurer, text string, font FontRef, maxWidth, yIfFits, yIfNot float64) float64 {
	if w, _ := m.Measure(text, font); w <= maxWidth {
		return yIfFits
	}
	return yIfNot
}

// Draw 按顺序把指令交给渲染协作方执行。
func Draw(ops []DrawOp, d TextDrawer) {
	for _, op := range ops {
		d.DrawText(op.X, op.Y, op.Text, op.Font, op.Color)
	}
}
