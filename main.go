package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/cardpress/assets"
	"github.com/ByLCY/cardpress/cache"
	"github.com/ByLCY/cardpress/deck"
	canvasrenderer "github.com/ByLCY/cardpress/renderer/canvas"
	"github.com/ByLCY/cardpress/server"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP 监听地址")
	assetDir := flag.String("assets", "assets", "字体与背景图目录")
	deckPath := flag.String("deck", "", "卡牌模板文件路径，为空时使用内置模板")
	memcacheAddr := flag.String("memcache", "", "memcached 地址，多个以逗号分隔；为空时使用内存缓存")
	cacheSize := flag.Int("cache-size", cache.DefaultSize, "内存缓存的卡图数量，0 表示不缓存")
	cacheTTL := flag.Duration("cache-ttl", cache.DefaultTTL, "缓存有效期")
	quality := flag.Int("quality", canvasrenderer.DefaultQuality, "JPEG 质量（1-100）")
	output := flag.String("out", "", "单次渲染的 JPEG 输出路径，指定时不启动服务")
	query := flag.String("query", "", "单次渲染的请求参数，例如 card=agenda&title=Mutiny")
	debug := flag.String("debug", "", "单次渲染时输出组装结果 JSON 的路径")
	flag.Parse()

	d, err := loadDeck(*deckPath)
	if err != nil {
		log.Fatalf("加载卡牌模板失败: %v", err)
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Assets:  assets.Dir{Root: *assetDir},
		Quality: *quality,
	})

	if *output != "" {
		if err := renderOnce(d, r, *query, *output, *debug); err != nil {
			log.Fatalf("生成卡图失败: %v", err)
		}
		fmt.Printf("已生成卡图：%s\n", *output)
		return
	}

	var c cache.Cache
	switch {
	case *memcacheAddr != "":
		c = cache.NewMemcache(strings.Split(*memcacheAddr, ",")...)
	case *cacheSize > 0:
		c = cache.NewMemory(*cacheSize, *cacheTTL)
	default:
		c = cache.Nop{}
	}

	h := server.NewHandler(server.HandlerConfig{
		Deck:       d,
		Typesetter: r,
		Renderer:   r,
		Cache:      c,
		TTL:        *cacheTTL,
	})
	if err := server.New(server.Config{Addr: *addr}, h).Run(context.Background()); err != nil {
		log.Fatalf("服务退出: %v", err)
	}
}

func loadDeck(path string) (*deck.Deck, error) {
	if path == "" {
		return deck.Default()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
	}
	defer file.Close()
	return deck.Load(file)
}

// renderOnce 按查询参数渲染一张卡图并写入文件。
func renderOnce(d *deck.Deck, r *canvasrenderer.Renderer, rawQuery, outputPath, debugPath string) error {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("解析请求参数失败: %w", err)
	}
	req := server.ParseRequest(q)
	tpl, err := d.Template(req.Card)
	if err != nil {
		return err
	}

	scene, err := deck.Compose(tpl, req.Fields, r)
	if err != nil {
		return fmt.Errorf("组装卡面失败: %w", err)
	}
	if debugPath != "" {
		if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := deck.WriteDebugJSON(scene, debugPath); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	img, err := r.Render(scene)
	if err != nil {
		return fmt.Errorf("渲染卡图失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, img, 0o644); err != nil {
		return fmt.Errorf("写入卡图失败: %w", err)
	}
	return nil
}
