package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/moneysparkle/pkg/particle"
)

// GlyphProvider 预渲染字形位图
// 每个调色板颜色返回一个位图，索引与粒子的 ImageIndex 对应
type GlyphProvider interface {
	Prerender(glyph string, palette []color.Color) ([]particle.Bitmap, error)
}

// GlyphAtlas 使用 ebiten text/v2 将字形渲染到离屏图像
//
// 第一个颜色按 fontSize × resolution 渲染（根粒子），其余按一半字号渲染（子代粒子）。
type GlyphAtlas struct {
	source     *text.GoTextFaceSource
	fontSize   float64
	resolution float64
}

// NewGlyphAtlas 使用内置的 Go Regular 字体创建字形图集
func NewGlyphAtlas(fontSize, resolution float64) (*GlyphAtlas, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to load glyph font: %w", err)
	}
	if resolution <= 0 {
		resolution = 1
	}
	return &GlyphAtlas{
		source:     source,
		fontSize:   fontSize,
		resolution: resolution,
	}, nil
}

// FaceSize 返回调色板第 index 个字形的字号（物理像素）
func (a *GlyphAtlas) FaceSize(index int) float64 {
	size := a.fontSize * a.resolution
	if index > 0 {
		size /= 2
	}
	return size
}

// Prerender 为每个调色板颜色渲染一个字形位图
func (a *GlyphAtlas) Prerender(glyph string, palette []color.Color) ([]particle.Bitmap, error) {
	if glyph == "" {
		return nil, fmt.Errorf("empty glyph")
	}

	bitmaps := make([]particle.Bitmap, 0, len(palette))
	for i, c := range palette {
		face := &text.GoTextFace{
			Source: a.source,
			Size:   a.FaceSize(i),
		}

		w, h := MeasureGlyph(glyph, face)
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("glyph %q measured %dx%d at size %.1f", glyph, w, h, face.Size)
		}

		img := ebiten.NewImage(w, h)
		op := &text.DrawOptions{}
		op.ColorScale.ScaleWithColor(c)
		text.Draw(img, glyph, face, op)

		bitmaps = append(bitmaps, img)
	}
	return bitmaps, nil
}

// MeasureGlyph 测量字形的像素尺寸（向上取整）
func MeasureGlyph(glyph string, face *text.GoTextFace) (int, int) {
	if glyph == "" || face == nil {
		return 0, 0
	}
	w, h := text.Measure(glyph, face, 0)
	return int(math.Ceil(w)), int(math.Ceil(h))
}
