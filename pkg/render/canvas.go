// Package render 提供金钱火花效果的绘制表面适配器
//
//   - Canvas: ebiten 离屏画布
//   - TerminalSurface: tcell 终端字符画布
//   - Recorder: 无头模式下记录绘制调用
package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/moneysparkle/pkg/particle"
)

// Canvas ebiten 离屏画布
//
// 画布物理尺寸为逻辑尺寸 × resolution，合成到屏幕时缩放 1/resolution，
// 这样字形在高分辨率下依然清晰。
type Canvas struct {
	image         *ebiten.Image
	width, height int // 逻辑尺寸
	resolution    float64
}

// NewCanvas 创建离屏画布
func NewCanvas(width, height int, resolution float64) *Canvas {
	if resolution <= 0 {
		resolution = 1
	}
	w := int(float64(width) * resolution)
	h := int(float64(height) * resolution)
	return &Canvas{
		image:      ebiten.NewImage(w, h),
		width:      width,
		height:     height,
		resolution: resolution,
	}
}

// Clear 清空画布
func (c *Canvas) Clear() {
	c.image.Clear()
}

// DrawImage 绘制一个字形
// 每次调用使用新的 DrawImageOptions，变换和透明度不会影响后续绘制
func (c *Canvas) DrawImage(bitmap particle.Bitmap, opts particle.DrawOptions) {
	img, ok := bitmap.(*ebiten.Image)
	if !ok || img == nil {
		return
	}

	op := &ebiten.DrawImageOptions{}
	// 与 Canvas 2D 的 translate → rotate → scale 相同，作用于顶点时顺序相反
	op.GeoM.Scale(opts.Scale, opts.Scale)
	op.GeoM.Rotate(opts.Angle)
	op.GeoM.Translate(opts.X, opts.Y)
	op.ColorScale.ScaleAlpha(float32(opts.Alpha))
	op.Filter = ebiten.FilterLinear

	c.image.DrawImage(img, op)
}

// Composite 将画布缩放到逻辑尺寸并绘制到屏幕
func (c *Canvas) Composite(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/c.resolution, 1/c.resolution)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(c.image, op)
}

// Size 返回画布逻辑尺寸
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Resolution 返回物理/逻辑像素比
func (c *Canvas) Resolution() float64 {
	return c.resolution
}

// Image 返回底层离屏图像
func (c *Canvas) Image() *ebiten.Image {
	return c.image
}
