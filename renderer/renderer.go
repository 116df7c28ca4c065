package renderer

import "github.com/ByLCY/cardpress/deck"

// Renderer 将组装好的卡面输出为最终图像，例如 JPEG。
// Render 返回编码后的字节切片以及可能的错误。
type Renderer interface {
	Render(scene *deck.Scene) ([]byte, error)
}
