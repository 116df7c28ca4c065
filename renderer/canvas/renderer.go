package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/cardpress/assets"
	"github.com/ByLCY/cardpress/deck"
	"github.com/ByLCY/cardpress/layout"
	"github.com/ByLCY/cardpress/renderer"
)

// DefaultQuality 与原卡图服务的 JPEG 质量一致。
const DefaultQuality = 75

// Renderer draws card scenes via github.com/tdewolff/canvas and encodes them as JPEG.
// 画布以 1 单位 = 1 像素栅格化，坐标系为左上角原点。
type Renderer struct {
	assets  assets.Store
	quality int

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ deck.Typesetter   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Assets  assets.Store
	Quality int // JPEG 质量（1-100），<=0 时使用 DefaultQuality
}

// NewRenderer creates a renderer reading fonts and templates from store.
func NewRenderer(store assets.Store) *Renderer {
	return NewRendererWithOptions(Options{Assets: store})
}

// NewRendererWithOptions creates a renderer with explicit options.
func NewRendererWithOptions(opts Options) *Renderer {
	store := opts.Assets
	if store == nil {
		store = assets.Memory{}
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Renderer{
		assets:   store,
		quality:  quality,
		families: map[string]*canvas.FontFamily{},
	}
}

// Measurer 实现 deck.Typesetter：预先加载所需字体面，返回基于 canvas 字体度量的测量器。
func (r *Renderer) Measurer(fonts ...layout.FontRef) (layout.Measurer, error) {
	m := &faceMeasurer{r: r, faces: make(map[layout.FontRef]*canvas.FontFace, len(fonts))}
	for _, f := range fonts {
		face, err := r.fontFace(f, layout.Color{A: 255})
		if err != nil {
			return nil, err
		}
		m.faces[f] = face
	}
	return m, nil
}

// faceMeasurer 只在一次组装内使用，不需要加锁。
type faceMeasurer struct {
	r     *Renderer
	faces map[layout.FontRef]*canvas.FontFace
}

func (m *faceMeasurer) Measure(text string, font layout.FontRef) (float64, float64) {
	face, ok := m.faces[font]
	if !ok {
		var err error
		face, err = m.r.fontFace(font, layout.Color{A: 255})
		if err != nil {
			return 0, 0
		}
		m.faces[font] = face
	}
	return face.TextWidth(text), face.Metrics().LineHeight
}

// Render 解码背景图，在其上绘制矩形与文字，并编码为 JPEG。
func (r *Renderer) Render(scene *deck.Scene) ([]byte, error) {
	if scene == nil {
		return nil, fmt.Errorf("渲染内容为空")
	}
	blob, err := r.assets.Image(scene.Background)
	if err != nil {
		return nil, fmt.Errorf("读取背景图 %s 失败: %w", scene.Background, err)
	}
	bg, _, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("解码背景图 %s 失败: %w", scene.Background, err)
	}
	bounds := bg.Bounds()

	c := canvas.New(float64(bounds.Dx()), float64(bounds.Dy()))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与模板保持左上角为原点

	r.drawRects(ctx, scene.Rects)
	d := &contextDrawer{r: r, ctx: ctx}
	layout.Draw(scene.Ops, d)
	if d.err != nil {
		return nil, d.err
	}

	overlay := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), bg, bounds.Min, draw.Src)
	draw.Draw(dst, dst.Bounds(), overlay, overlay.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, fmt.Errorf("编码 JPEG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawRects 绘制无描边的实心矩形（模板像素）
func (r *Renderer) drawRects(ctx *canvas.Context, rects []deck.Rect) {
	for _, rc := range rects {
		ctx.SetFillColor(colorFromLayout(rc.Color))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeWidth(0)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

// contextDrawer 把 DrawOp 落到 canvas 上，记录第一个字体错误。
type contextDrawer struct {
	r   *Renderer
	ctx *canvas.Context
	err error
}

func (d *contextDrawer) DrawText(x, y float64, text string, font layout.FontRef, col layout.Color) {
	if d.err != nil || strings.TrimSpace(text) == "" {
		return
	}
	face, err := d.r.fontFace(font, col)
	if err != nil {
		d.err = err
		return
	}
	// DrawOp 的 Y 是文字顶部，基线需再加上字体上升部
	line := canvas.NewTextLine(face, text, canvas.Left)
	d.ctx.DrawText(x, y+face.Metrics().Ascent, line)
}

func (r *Renderer) fontFace(font layout.FontRef, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font.Name)
	if err != nil {
		return nil, err
	}
	return family.Face(layout.CanvasSizePt(font.Size), colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

// ensureFontFamily 每个字体文件对应一个 family；资源缺失时回退到内置字体。
func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[name]; ok {
		return family, nil
	}

	data, err := r.assets.Font(name)
	if err != nil {
		log.Printf("字体 %s 不可用，改用内置字体: %v", name, err)
		data = assets.Fallback(name)
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	r.families[name] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}
