package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/ByLCY/cardpress/assets"
	"github.com/ByLCY/cardpress/deck"
	"github.com/ByLCY/cardpress/layout"
)

func testStore(t *testing.T) assets.Memory {
	t.Helper()
	bg := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			bg.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bg); err != nil {
		t.Fatalf("encode background: %v", err)
	}
	return assets.Memory{
		Fonts: map[string][]byte{
			"Body.ttf": assets.Fallback("Body.ttf"),
			"Bold.ttf": assets.Fallback("Bold.ttf"),
		},
		Images: map[string][]byte{"Card.png": buf.Bytes()},
	}
}

func TestMeasureGrowsWithText(t *testing.T) {
	r := NewRenderer(testStore(t))
	font := layout.FontRef{Name: "Body.ttf", Size: 32}
	m, err := r.Measurer(font)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	short, h := m.Measure("hello", font)
	long, _ := m.Measure("hello world", font)
	if short <= 0 || h <= 0 {
		t.Fatalf("expected positive metrics, got width=%g height=%g", short, h)
	}
	if long <= short {
		t.Fatalf("expected longer text to be wider: short=%g long=%g", short, long)
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	r := NewRenderer(testStore(t))
	small := layout.FontRef{Name: "Body.ttf", Size: 16}
	large := layout.FontRef{Name: "Body.ttf", Size: 32}
	m, err := r.Measurer(small, large)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ws, _ := m.Measure("Agenda", small)
	wl, _ := m.Measure("Agenda", large)
	if diff := wl - 2*ws; diff > 0.01*wl || diff < -0.01*wl {
		t.Fatalf("expected width to double with size: small=%g large=%g", ws, wl)
	}
}

func TestMissingFontFallsBack(t *testing.T) {
	r := NewRenderer(testStore(t))
	font := layout.FontRef{Name: "HandelGothicDBold.otf", Size: 44}
	m, err := r.Measurer(font)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, _ := m.Measure("TITLE", font); w <= 0 {
		t.Fatalf("expected fallback font to measure text, got %g", w)
	}
}

// TestWrapWidthLimit 验证真实字体下每行宽度不超过限制。
func TestWrapWidthLimit(t *testing.T) {
	r := NewRenderer(testStore(t))
	font := layout.FontRef{Name: "Body.ttf", Size: 24}
	m, err := r.Measurer(font)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	limit := 200.0
	res := layout.Wrap(m, layout.Block{
		Text: "Gain 2 trade goods and replenish your commodities at the start of the action phase",
		Font: font,
		Box:  layout.Box{X: 10, Y: 10, MaxWidth: limit, LineHeight: 30, Mode: layout.Left},
	})
	if len(res.Ops) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(res.Ops))
	}
	for i, op := range res.Ops {
		if w, _ := m.Measure(op.Text, font); w-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, w, limit)
		}
	}
}

func TestRenderProducesJPEG(t *testing.T) {
	r := NewRendererWithOptions(Options{Assets: testStore(t), Quality: 95})
	font := layout.FontRef{Name: "Bold.ttf", Size: 20}
	scene := &deck.Scene{
		Card:       "action",
		Background: "Card.png",
		Rects:      []deck.Rect{{X: 0, Y: 0, Width: 40, Height: 30, Color: layout.Color{R: 12, G: 12, B: 14, A: 255}}},
		Ops: []layout.DrawOp{
			{X: 50, Y: 40, Text: "HI", Font: font, Color: layout.Color{R: 255, A: 255}},
			{X: 50, Y: 60, Text: "", Font: font, Color: layout.Color{A: 255}},
		},
	}
	data, err := r.Render(scene)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("expected 100x80 image, got %dx%d", b.Dx(), b.Dy())
	}

	cr, cg, cb, _ := img.At(20, 15).RGBA()
	if cr>>8 > 40 || cg>>8 > 40 || cb>>8 > 40 {
		t.Fatalf("expected dark rect pixel, got (%d,%d,%d)", cr>>8, cg>>8, cb>>8)
	}
	cr, cg, cb, _ = img.At(90, 5).RGBA()
	if cr>>8 < 220 || cg>>8 < 220 || cb>>8 < 220 {
		t.Fatalf("expected white background pixel, got (%d,%d,%d)", cr>>8, cg>>8, cb>>8)
	}
}

func TestRenderMissingBackground(t *testing.T) {
	r := NewRenderer(testStore(t))
	_, err := r.Render(&deck.Scene{Background: "NobilityPurple.jpg"})
	if !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenderNilScene(t *testing.T) {
	r := NewRenderer(testStore(t))
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil scene")
	}
}
