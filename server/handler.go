package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ByLCY/cardpress/cache"
	"github.com/ByLCY/cardpress/deck"
	"github.com/ByLCY/cardpress/renderer"
)

// Handler 处理 /img 请求：查缓存，未命中时组装并渲染卡图。
type Handler struct {
	deck       *deck.Deck
	typesetter deck.Typesetter
	renderer   renderer.Renderer
	cache      cache.Cache
	ttl        time.Duration
}

// HandlerConfig 汇总 Handler 的依赖。
type HandlerConfig struct {
	Deck       *deck.Deck
	Typesetter deck.Typesetter
	Renderer   renderer.Renderer
	Cache      cache.Cache   // 为空时不缓存
	TTL        time.Duration // 为 0 时使用 cache.DefaultTTL
}

// NewHandler creates a card image handler.
func NewHandler(cfg HandlerConfig) *Handler {
	c := cfg.Cache
	if c == nil {
		c = cache.Nop{}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Handler{
		deck:       cfg.Deck,
		typesetter: cfg.Typesetter,
		renderer:   cfg.Renderer,
		cache:      c,
		ttl:        ttl,
	}
}

// ServeHTTP implements http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	req := ParseRequest(r.URL.Query())
	log.Printf("card=%s title=%q type=%q body=%q flavor=%q footer=%q color=%s points=%s",
		req.Card, req.Fields["title"], req.Fields["type"], req.Fields["body"],
		req.Fields["flavor"], req.Fields["footer"], req.Fields["color"], req.Fields["points"])

	img, err := h.image(r, req)
	if errors.Is(err, deck.ErrUnknownCard) {
		http.Error(w, "Bad card type", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("生成卡图失败: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(img)
	}
}

func (h *Handler) image(r *http.Request, req Request) ([]byte, error) {
	tpl, err := h.deck.Template(req.Card)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	key := cache.Key(h.deck.Version, req.CacheValues()...)
	if img, ok, err := h.cache.Get(ctx, key); err != nil {
		log.Printf("读取缓存失败，按未命中处理: %v", err)
	} else if ok {
		return img, nil
	}

	img, err := Render(tpl, req, h.typesetter, h.renderer)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Add(ctx, key, img, h.ttl); err != nil {
		log.Printf("写入缓存失败: %v", err)
	}
	return img, nil
}

// Render 组装并渲染一张卡图，供服务与命令行共用。
func Render(tpl *deck.Template, req Request, ts deck.Typesetter, r renderer.Renderer) ([]byte, error) {
	scene, err := deck.Compose(tpl, req.Fields, ts)
	if err != nil {
		return nil, err
	}
	return r.Render(scene)
}
