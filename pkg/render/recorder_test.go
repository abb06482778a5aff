package render

import (
	"image/color"
	"testing"

	"github.com/decker502/moneysparkle/pkg/particle"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	glyphs, err := PlaceholderGlyphs{}.Prerender("$", []color.Color{color.Black, color.White})
	if err != nil {
		t.Fatalf("Prerender() error: %v", err)
	}
	if got := glyphs[1].(PlaceholderGlyph).Index; got != 1 {
		t.Errorf("placeholder index = %d, want 1", got)
	}

	r.Clear()
	r.DrawImage(glyphs[0], particle.DrawOptions{X: 1})
	r.DrawImage(glyphs[1], particle.DrawOptions{X: 2})
	r.Clear()
	r.DrawImage(glyphs[0], particle.DrawOptions{X: 3})

	if r.Clears() != 2 || r.Draws() != 3 {
		t.Errorf("clears/draws = %d/%d, want 2/3", r.Clears(), r.Draws())
	}
	if prev := r.PreviousFrame(); len(prev) != 2 || prev[1].Opts.X != 2 {
		t.Errorf("previous frame = %+v", prev)
	}
	if cur := r.CurrentFrame(); len(cur) != 1 || cur[0].Opts.X != 3 {
		t.Errorf("current frame = %+v", cur)
	}
}
