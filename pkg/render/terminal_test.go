package render

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/moneysparkle/pkg/particle"
)

func newSimulationSurface(t *testing.T, cols, rows int) (tcell.SimulationScreen, *TerminalSurface) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(cols, rows)
	return screen, NewTerminalSurface(screen, 8, 16)
}

func testTerminalPalette(t *testing.T) []particle.Bitmap {
	t.Helper()
	palette := []color.Color{
		color.RGBA{R: 0x00, G: 0xaa, B: 0x00, A: 0xff},
		color.RGBA{R: 0xff, A: 0xff},
	}
	glyphs, err := TerminalGlyphs{}.Prerender("$", palette)
	if err != nil {
		t.Fatalf("Prerender() error: %v", err)
	}
	return glyphs
}

func TestTerminalGlyphs_Prerender(t *testing.T) {
	glyphs := testTerminalPalette(t)
	if len(glyphs) != 2 {
		t.Fatalf("len = %d, want 2", len(glyphs))
	}
	root := glyphs[0].(TerminalGlyph)
	child := glyphs[1].(TerminalGlyph)
	if root.Rune != '$' || root.Small {
		t.Errorf("root glyph = %+v", root)
	}
	if !child.Small {
		t.Error("child glyph should be small")
	}

	if _, err := (TerminalGlyphs{}).Prerender("", nil); err == nil {
		t.Error("expected error for empty glyph")
	}
}

func TestTerminalSurface_DrawImage(t *testing.T) {
	screen, surface := newSimulationSurface(t, 10, 5)
	glyphs := testTerminalPalette(t)

	// (20, 40) → 单元格 (2, 2)
	surface.DrawImage(glyphs[0], particle.DrawOptions{X: 20, Y: 40, Scale: 1, Alpha: 1})
	mainc, _, style, _ := screen.GetContent(2, 2)
	if mainc != '$' {
		t.Errorf("cell (2,2) = %q, want '$'", mainc)
	}
	fg, _, attrs := style.Decompose()
	r, g, b := fg.RGB()
	if r != 0x00 || g != 0xaa || b != 0x00 {
		t.Errorf("foreground = %02x%02x%02x, want 00aa00", r, g, b)
	}
	if attrs&tcell.AttrBold == 0 {
		t.Error("root glyph should be bold")
	}

	// 弹出阶段显示为点
	surface.DrawImage(glyphs[1], particle.DrawOptions{X: 0, Y: 0, Scale: 0.2, Alpha: 1})
	if mainc, _, _, _ := screen.GetContent(0, 0); mainc != dotRune {
		t.Errorf("cell (0,0) = %q, want %q", mainc, dotRune)
	}

	// 半透明：颜色向黑色混合
	surface.DrawImage(glyphs[1], particle.DrawOptions{X: 8, Y: 0, Scale: 1, Alpha: 0.5})
	_, _, style, _ = screen.GetContent(1, 0)
	fg, _, _ = style.Decompose()
	r, _, _ = fg.RGB()
	if r < 0x70 || r > 0x90 {
		t.Errorf("half-alpha red = %02x, want about 80", r)
	}

	surface.Clear()
	if mainc, _, _, _ := screen.GetContent(2, 2); mainc != ' ' {
		t.Errorf("after Clear cell (2,2) = %q, want blank", mainc)
	}
}

func TestTerminalSurface_OffscreenIgnored(t *testing.T) {
	_, surface := newSimulationSurface(t, 4, 4)
	glyphs := testTerminalPalette(t)

	// 超出画布的粒子只是不绘制，不会出错
	for _, opts := range []particle.DrawOptions{
		{X: -5, Y: 10, Scale: 1, Alpha: 1},
		{X: 10, Y: -5, Scale: 1, Alpha: 1},
		{X: 1000, Y: 10, Scale: 1, Alpha: 1},
		{X: 10, Y: 1000, Scale: 1, Alpha: 1},
	} {
		surface.DrawImage(glyphs[0], opts)
	}
	surface.DrawImage(PlaceholderGlyph{}, particle.DrawOptions{Scale: 1, Alpha: 1})
}

func TestTerminalSurface_Coordinates(t *testing.T) {
	_, surface := newSimulationSurface(t, 80, 24)

	x, y := surface.CellToPixel(10, 5)
	if x != 84 || y != 88 {
		t.Errorf("CellToPixel(10,5) = (%v,%v), want (84,88)", x, y)
	}
	w, h := surface.PixelSize()
	if w != 640 || h != 384 {
		t.Errorf("PixelSize() = (%v,%v), want (640,384)", w, h)
	}
}
