package deck

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/cardpress/binding"
	"github.com/ByLCY/cardpress/layout"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 所有字体每个字符宽 10px。
type stubTypesetter struct {
	requested []layout.FontRef
	err       error
}

func (s *stubTypesetter) Measurer(fonts ...layout.FontRef) (layout.Measurer, error) {
	s.requested = append(s.requested, fonts...)
	if s.err != nil {
		return nil, s.err
	}
	return stubMeasurer{}, nil
}

type stubMeasurer struct{}

func (stubMeasurer) Measure(text string, font layout.FontRef) (float64, float64) {
	return 10 * float64(utf8.RuneCountInString(text)), font.Size
}

func mustDefault(t *testing.T) *Deck {
	t.Helper()
	d, err := Default()
	if err != nil {
		t.Fatalf("加载内置牌组失败: %v", err)
	}
	return d
}

func compose(t *testing.T, card string, fields binding.Fields) (*Scene, *stubTypesetter) {
	t.Helper()
	tpl, err := mustDefault(t).Template(card)
	if err != nil {
		t.Fatalf("查找模板失败: %v", err)
	}
	ts := &stubTypesetter{}
	scene, err := Compose(tpl, fields, ts)
	if err != nil {
		t.Fatalf("组装失败: %v", err)
	}
	return scene, ts
}

func opsWithFont(scene *Scene, name string) []layout.DrawOp {
	var out []layout.DrawOp
	for _, op := range scene.Ops {
		if op.Font.Name == name {
			out = append(out, op)
		}
	}
	return out
}

func TestDefaultDeckCards(t *testing.T) {
	d := mustDefault(t)
	if d.Version != "version5" {
		t.Fatalf("unexpected version %q", d.Version)
	}
	want := []string{"action", "agenda", "nobility", "secret", "stage1", "stage2"}
	if diff := cmp.Diff(want, d.Names()); diff != "" {
		t.Fatalf("card names mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownCard(t *testing.T) {
	_, err := mustDefault(t).Template("relic")
	if !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
}

func TestComposeActionCard(t *testing.T) {
	scene, ts := compose(t, "action", binding.Fields{
		"title":  "SABOTAGE",
		"body":   "Action: Cancel an action card.",
		"flavor": "x",
	})
	if scene.Background != "ActionCard.jpg" {
		t.Fatalf("unexpected background %q", scene.Background)
	}

	title := opsWithFont(scene, "HandelGothicDBold.otf")
	if len(title) != 1 || title[0].X != 85 || title[0].Y != 92 {
		t.Fatalf("title should sit at (85,92): %+v", title)
	}
	if title[0].Color != (layout.Color{R: 0xFF, G: 0xE8, B: 0x96, A: 0xFF}) {
		t.Fatalf("unexpected title colour %+v", title[0].Color)
	}

	bold := opsWithFont(scene, "MyriadProBold.ttf")
	if len(bold) != 1 || bold[0].Text != "Action:" || bold[0].Y != 200 {
		t.Fatalf("expected bold Action: prefix, got %+v", bold)
	}
	regular := opsWithFont(scene, "MyriadProSemibold.otf")
	if len(regular) != 4 || regular[0].Text != "Cancel" || regular[0].Y != 200 {
		t.Fatalf("expected regular body on the same line, got %+v", regular)
	}

	flavor := opsWithFont(scene, "MyriadWebProItalic.ttf")
	if len(flavor) != 1 || flavor[0].Y != 575 || flavor[0].X != 260 {
		t.Fatalf("flavor should be centred at y=575: %+v", flavor)
	}

	wantFonts := []layout.FontRef{
		{Name: "HandelGothicDBold.otf", Size: 44},
		{Name: "MyriadProBold.ttf", Size: 32},
		{Name: "MyriadProSemibold.otf", Size: 32},
		{Name: "MyriadWebProItalic.ttf", Size: 26},
	}
	if diff := cmp.Diff(wantFonts, ts.requested); diff != "" {
		t.Fatalf("requested fonts mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeActionTitleNudge(t *testing.T) {
	scene, _ := compose(t, "action", binding.Fields{"title": "A VERY LONG ACTION CARD TITLE THAT WRAPS NOW"})
	title := opsWithFont(scene, "HandelGothicDBold.otf")
	if len(title) < 2 || title[0].Y != 72 {
		t.Fatalf("long title should start at y=72 and wrap: %+v", title)
	}
}

func TestComposeFlavorFollowsLongBody(t *testing.T) {
	scene, _ := compose(t, "action", binding.Fields{
		"body":   "Rule: a\nRule: b\nRule: c\nRule: d",
		"flavor": "x",
	})
	flavor := opsWithFont(scene, "MyriadWebProItalic.ttf")
	// 每段 "Rule: x" 占 2×57 像素：200 → 314 → 428 → 542 → 656。
	if len(flavor) != 1 || flavor[0].Y != 656 {
		t.Fatalf("flavor should continue below body: %+v", flavor)
	}
}

func TestComposeMissingFieldDrawsNothing(t *testing.T) {
	scene, _ := compose(t, "action", binding.Fields{"title": "T"})
	if got := opsWithFont(scene, "MyriadWebProItalic.ttf"); len(got) != 0 {
		t.Fatalf("missing flavor should not draw: %+v", got)
	}
}

func TestComposeKeepsPlaceholderInUserText(t *testing.T) {
	scene, _ := compose(t, "secret", binding.Fields{"title": "T", "type": "X", "body": "Spend ${cost} to score"})
	body := opsWithFont(scene, "MyriadProSemibold.otf")
	var words []string
	for _, op := range body {
		words = append(words, strings.Fields(op.Text)...)
	}
	if got := strings.Join(words, " "); got != "Spend ${cost} to score" {
		t.Fatalf("user body should be drawn verbatim, got %q (%+v)", got, body)
	}
}

func TestComposeSecretTypeColour(t *testing.T) {
	white := layout.Color{R: 255, G: 255, B: 255, A: 255}
	red := layout.Color{R: 255, A: 255}
	for typ, want := range map[string]layout.Color{"STATUS PHASE": white, "ACTION PHASE": red} {
		scene, _ := compose(t, "secret", binding.Fields{"title": "T", "type": typ, "body": "b"})
		var found bool
		for _, op := range scene.Ops {
			if strings.TrimSpace(op.Text) == typ {
				found = true
				if op.Color != want {
					t.Fatalf("type %q colour: got %+v want %+v", typ, op.Color, want)
				}
			}
		}
		if !found {
			t.Fatalf("type %q not drawn: %+v", typ, scene.Ops)
		}
		if len(scene.Rects) != 1 || scene.Rects[0].Width != 250 {
			t.Fatalf("expected type box rect, got %+v", scene.Rects)
		}
	}
}

func TestComposeSecretBodyCentredVertically(t *testing.T) {
	scene, _ := compose(t, "secret", binding.Fields{"body": "Own 2 planets.\nIn your home system."})
	body := opsWithFont(scene, "MyriadProSemibold.otf")
	if len(body) != 2 {
		t.Fatalf("expected two body lines, got %+v", body)
	}
	if body[0].Y != 395-47 || body[1].Y != 395 {
		t.Fatalf("body block should be centred on y=395: %+v", body)
	}
}

func TestComposeAgendaElection(t *testing.T) {
	scene, _ := compose(t, "agenda", binding.Fields{
		"type": "LAW",
		"body": "Elect Planet\nThe owner gains 1 victory point.",
	})
	bold := opsWithFont(scene, "MyriadProBold.ttf")
	var elect []layout.DrawOp
	for _, op := range bold {
		if op.Text == "Elect Planet " {
			elect = append(elect, op)
		}
	}
	if len(elect) != 1 || elect[0].X != 250-65 || elect[0].Y != 220 {
		t.Fatalf("elect line should be bold and centred: %+v", elect)
	}
	for _, op := range opsWithFont(scene, "MyriadProSemibold.otf") {
		if op.X == 60 {
			t.Fatalf("election body must be centred, got %+v", op)
		}
	}
}

func TestComposeAgendaVotingOutcomes(t *testing.T) {
	scene, _ := compose(t, "agenda", binding.Fields{
		"type": "DIRECTIVE",
		"body": "Players vote.\nFor: All players draw 1 card.\nAgainst: Nothing happens.",
	})
	var prefixes []layout.DrawOp
	for _, op := range opsWithFont(scene, "MyriadProBold.ttf") {
		if op.Text == "For:" || op.Text == "Against:" {
			prefixes = append(prefixes, op)
		}
	}
	if len(prefixes) != 2 || prefixes[0].X != 60 || prefixes[1].X != 60 {
		t.Fatalf("expected bold For:/Against: prefixes at x=60, got %+v", prefixes)
	}
	// "Players vote." 是普通段落，整行绘制。
	first := opsWithFont(scene, "MyriadProSemibold.otf")[0]
	if first.Text != "Players vote. " || first.Y != 220 {
		t.Fatalf("unexpected first paragraph %+v", first)
	}
	if prefixes[0].Y != 220+57 {
		t.Fatalf("For: paragraph should start after the first: %+v", prefixes[0])
	}
	for _, op := range scene.Ops {
		if op.Text == "DIRECTIVE " && op.Color != (layout.Color{R: 255, G: 255, A: 255}) {
			t.Fatalf("directive type should be yellow, got %+v", op.Color)
		}
	}
}

func TestComposeNobility(t *testing.T) {
	scene, _ := compose(t, "nobility", binding.Fields{
		"color":  "Red",
		"footer": "PUBLIC",
		"points": "3",
	})
	if scene.Background != "NobilityRed.jpg" {
		t.Fatalf("unexpected background %q", scene.Background)
	}
	var points, footer *layout.DrawOp
	for i, op := range scene.Ops {
		switch op.Text {
		case "3 ":
			points = &scene.Ops[i]
		case "PUBLIC ":
			footer = &scene.Ops[i]
		}
	}
	if points == nil || points.Font.Size != 130 || points.X != 255 {
		t.Fatalf("unexpected points op %+v", points)
	}
	if footer == nil || footer.Color != (layout.Color{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("public footer should be white, got %+v", footer)
	}
}

func TestComposeTypesetterError(t *testing.T) {
	tpl, _ := mustDefault(t).Template("stage1")
	_, err := Compose(tpl, binding.Fields{}, &stubTypesetter{err: errors.New("boom")})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped typesetter error, got %v", err)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	fields := binding.Fields{"title": "T", "body": "For: x\nAgainst: y", "type": "LAW"}
	a, _ := compose(t, "agenda", fields)
	b, _ := compose(t, "agenda", fields)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("compose not deterministic (-a +b):\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":    `deck D v1 { card a { background: "a.jpg"; text title { font: "f"; bogus: 1 } } }`,
		"bad colour":     `deck D v1 { card a { background: "a.jpg"; text title { font: "f"; color: "red" } } }`,
		"bad align":      `deck D v1 { card a { background: "a.jpg"; text title { font: "f"; align: justify } } }`,
		"unknown field":  `deck D v1 { card a { background: "a.jpg"; text subtitle { font: "f" } } }`,
		"no background":  `deck D v1 { card a { text title { font: "f" } } }`,
		"no font":        `deck D v1 { card a { background: "a.jpg"; text title { size: 3 } } }`,
		"duplicate card": `deck D v1 { card a { background: "a.jpg" } card a { background: "b.jpg" } }`,
		"placeholder":    `deck D v1 { card a { background: "${faction}.jpg" } }`,
		"bad when":       `deck D v1 { card a { background: "a.jpg"; text title { font: "f"; when matches "x" { size: 1 } } } }`,
	}
	for name, src := range cases {
		if _, err := Load(strings.NewReader(src)); err == nil {
			t.Fatalf("%s: expected compile error", name)
		}
	}
}

func TestWriteDebugJSON(t *testing.T) {
	scene, _ := compose(t, "stage2", binding.Fields{"title": "T", "body": "b"})
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteDebugJSON(scene, path); err != nil {
		t.Fatalf("写入调试 JSON 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}
	var got Scene
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("解析调试 JSON 失败: %v", err)
	}
	if got.Card != "stage2" || len(got.Ops) != len(scene.Ops) {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}
