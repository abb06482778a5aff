package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/decker502/moneysparkle/pkg/particle"
)

// RecordedDraw 一次绘制调用
type RecordedDraw struct {
	Bitmap particle.Bitmap
	Opts   particle.DrawOptions
}

// Recorder 无头绘制表面，记录清屏和绘制调用
type Recorder struct {
	mu        sync.Mutex
	clears    int
	draws     int
	lastFrame []RecordedDraw
	frame     []RecordedDraw
}

// NewRecorder 创建记录表面
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Clear 开始新的一帧
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.lastFrame = r.frame
	r.frame = nil
}

// DrawImage 记录一次绘制
func (r *Recorder) DrawImage(bitmap particle.Bitmap, opts particle.DrawOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws++
	r.frame = append(r.frame, RecordedDraw{Bitmap: bitmap, Opts: opts})
}

// Clears 返回清屏次数
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Draws 返回绘制调用总数
func (r *Recorder) Draws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

// CurrentFrame 返回最近一次清屏之后的绘制调用
func (r *Recorder) CurrentFrame() []RecordedDraw {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedDraw, len(r.frame))
	copy(out, r.frame)
	return out
}

// PreviousFrame 返回上一帧的绘制调用
func (r *Recorder) PreviousFrame() []RecordedDraw {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedDraw, len(r.lastFrame))
	copy(out, r.lastFrame)
	return out
}

// PlaceholderGlyph 无头模式的字形，只记录调色板索引
type PlaceholderGlyph struct {
	Index int
	Color color.Color
}

// Bounds 固定大小
func (PlaceholderGlyph) Bounds() image.Rectangle {
	return image.Rect(0, 0, 1, 1)
}

// PlaceholderGlyphs 无头模式的字形提供者
type PlaceholderGlyphs struct{}

// Prerender 为每个颜色生成一个占位字形
func (PlaceholderGlyphs) Prerender(_ string, palette []color.Color) ([]particle.Bitmap, error) {
	bitmaps := make([]particle.Bitmap, 0, len(palette))
	for i, c := range palette {
		bitmaps = append(bitmaps, PlaceholderGlyph{Index: i, Color: c})
	}
	return bitmaps, nil
}
