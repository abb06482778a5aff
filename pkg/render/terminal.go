package render

import (
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/moneysparkle/pkg/particle"
)

// dotRune 缩放未完成（弹出阶段）时显示的字符
const dotRune = '·'

// TerminalGlyph 终端单元格字形
type TerminalGlyph struct {
	Rune  rune
	Color colorful.Color
	Small bool // 子代字形（半字号）
}

// Bounds 一个字形占一个单元格
func (g TerminalGlyph) Bounds() image.Rectangle {
	return image.Rect(0, 0, 1, 1)
}

// TerminalGlyphs 终端字形提供者
type TerminalGlyphs struct{}

// Prerender 为每个调色板颜色生成一个终端字形
func (TerminalGlyphs) Prerender(glyph string, palette []color.Color) ([]particle.Bitmap, error) {
	r, _ := utf8.DecodeRuneInString(glyph)
	if r == utf8.RuneError {
		return nil, fmt.Errorf("invalid glyph %q", glyph)
	}

	bitmaps := make([]particle.Bitmap, 0, len(palette))
	for i, c := range palette {
		col, _ := colorful.MakeColor(c)
		bitmaps = append(bitmaps, TerminalGlyph{
			Rune:  r,
			Color: col,
			Small: i > 0,
		})
	}
	return bitmaps, nil
}

// TerminalSurface 把终端当作像素画布
//
// 每个字符单元格对应 cellWidth × cellHeight 个画布像素，粒子绘制在其位置所在的单元格。
// 透明度通过向背景色混合模拟；单元格无法旋转，Angle 被忽略。
type TerminalSurface struct {
	screen     tcell.Screen
	cellWidth  float64
	cellHeight float64
	background colorful.Color
}

// NewTerminalSurface 创建终端画布
func NewTerminalSurface(screen tcell.Screen, cellWidth, cellHeight float64) *TerminalSurface {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	return &TerminalSurface{
		screen:     screen,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
		background: colorful.Color{R: 0, G: 0, B: 0},
	}
}

// Clear 清空屏幕缓冲
func (s *TerminalSurface) Clear() {
	s.screen.Clear()
}

// DrawImage 在粒子所在单元格绘制字形
func (s *TerminalSurface) DrawImage(bitmap particle.Bitmap, opts particle.DrawOptions) {
	glyph, ok := bitmap.(TerminalGlyph)
	if !ok {
		return
	}

	col, row, ok := s.cellAt(opts.X, opts.Y)
	if !ok {
		return
	}

	r := glyph.Rune
	if opts.Scale < 0.5 {
		r = dotRune
	}

	style := tcell.StyleDefault.Foreground(s.fade(glyph.Color, opts.Alpha))
	if !glyph.Small {
		style = style.Bold(true)
	}

	s.screen.SetContent(col, row, r, nil, style)
}

// fade 按透明度把颜色混向背景色
func (s *TerminalSurface) fade(c colorful.Color, alpha float64) tcell.Color {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	blended := s.background.BlendRgb(c, alpha).Clamped()
	r, g, b := blended.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// cellAt 画布像素坐标转单元格坐标，超出屏幕返回 false
func (s *TerminalSurface) cellAt(x, y float64) (int, int, bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col := int(x / s.cellWidth)
	row := int(y / s.cellHeight)
	w, h := s.screen.Size()
	if col >= w || row >= h {
		return 0, 0, false
	}
	return col, row, true
}

// CellToPixel 单元格中心对应的画布像素坐标（用于把鼠标事件转换为爆发原点）
func (s *TerminalSurface) CellToPixel(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * s.cellWidth, (float64(row) + 0.5) * s.cellHeight
}

// PixelSize 返回整个终端对应的画布像素尺寸
func (s *TerminalSurface) PixelSize() (float64, float64) {
	w, h := s.screen.Size()
	return float64(w) * s.cellWidth, float64(h) * s.cellHeight
}

// Show 把缓冲刷新到终端
func (s *TerminalSurface) Show() {
	s.screen.Show()
}
