package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines the length units accepted by deck files and the
// conversions the canvas backend needs.

// Unit represents the original unit of a length value as specified in a deck.
type Unit int

const (
	UnitPX Unit = iota // template pixels (default)
	UnitPT             // points, CSS convention: 1pt = 4/3 px
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	PxPerPt = 96.0 / 72.0
)

func (u Unit) String() string {
	switch u {
	case UnitPT:
		return "pt"
	default:
		return "px"
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// PX converts the length to template pixels.
func (l Length) PX() float64 {
	if l.Unit == UnitPT {
		return l.Value * PxPerPt
	}
	return l.Value
}

// ParseLength parses "44", "44px" or "33pt".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	unit := UnitPX
	switch {
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
	case strings.HasSuffix(v, "pt"):
		v = strings.TrimSuffix(v, "pt")
		unit = UnitPT
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// CanvasSizePt 返回 canvas 字体面所需的字号（pt）。
// 渲染时 1 个画布单位（mm）对应 1 个像素，因此像素字号按毫米换算。
func CanvasSizePt(px float64) float64 { return px * MmToPt }
