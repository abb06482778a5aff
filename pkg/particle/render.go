package particle

import "image"

// Bitmap 预渲染的字形位图
// ebiten 实现为 *ebiten.Image，终端实现为单元格字形
type Bitmap interface {
	Bounds() image.Rectangle
}

// DrawOptions 单次绘制的变换参数
// 变换顺序与 Canvas 2D 的 translate → rotate → scale 一致
type DrawOptions struct {
	X, Y  float64 // 目标位置（画布像素）
	Angle float64 // 旋转（弧度）
	Scale float64 // 等比缩放
	Alpha float64 // 透明度 0-1
}

// Surface 绘制表面
//
// 每次 DrawImage 调用都是独立的：变换和透明度不会泄漏到后续绘制。
type Surface interface {
	// Clear 清空整个表面
	Clear()
	// DrawImage 按 opts 绘制位图
	DrawImage(bitmap Bitmap, opts DrawOptions)
}

// Render 将粒子绘制到表面上
func (p *Particle) Render(surface Surface, bitmap Bitmap) {
	if surface == nil || bitmap == nil {
		return
	}
	surface.DrawImage(bitmap, DrawOptions{
		X:     p.Position.X,
		Y:     p.Position.Y,
		Angle: p.Angle,
		Scale: p.Scale,
		Alpha: p.Alpha,
	})
}
