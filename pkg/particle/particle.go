// Package particle 实现金钱火花效果中的单个粒子
//
// 粒子只持有自身的物理状态（位置、速度、缩放、角度、透明度），
// 每帧由 BurstSequencer 调用 Move() 推进一次，不涉及任何调度逻辑。
package particle

import (
	"math"
	"math/rand"
)

// 物理常量（每帧增量，不依赖 dt）
const (
	Gravity        = 0.08 // 垂直速度每帧增量
	Friction       = 0.99 // 水平速度每帧衰减系数
	AlphaDecay     = 0.95 // 下落阶段透明度每帧衰减系数
	ChildDecayStep = 0.02 // 子代粒子额外的衰减系数增量（淡出更快）
	ScaleStep      = 0.1  // 弹出效果：每帧缩放增量
	ExpireAlpha    = 0.2  // 透明度低于该值时粒子失效
	MaxSpin        = 0.05 // 每帧旋转量上限（弧度）
	MaxInitAngle   = 20   // 初始角度范围 [-20, 20]，直接作为弧度使用
)

// PaletteSize 预渲染字形的调色板大小
// 索引 0 为根粒子，1..PaletteSize-1 为子代粒子随机使用
const PaletteSize = 4

// Vec 二维向量（画布像素坐标系，Y 轴向下）
type Vec struct {
	X, Y float64
}

// Particle 单个金钱符号粒子
type Particle struct {
	// Generation 代数：0 为触发点生成的根粒子，>0 为父粒子失效时生成的子粒子
	Generation int

	Position Vec
	Velocity Vec

	// Scale 当前缩放，从 0 增长到 1（弹出效果）
	Scale float64
	// Angle 当前旋转角度（弧度）
	Angle float64
	// Alpha 当前透明度，下落阶段按 AlphaDecay 乘法衰减
	Alpha float64

	// ImageIndex 调色板中预渲染字形的索引
	ImageIndex int

	// Spin 每帧旋转增量，方向与水平发射方向一致
	Spin float64
	// AlphaDecay 该粒子使用的透明度衰减系数
	AlphaDecay float64

	// BaseAngle 扇形发射的基础角度（弧度）
	// 当前物理模型不使用此值，仅保留以便扩展和测试
	BaseAngle float64
}

// New 创建一个粒子
//
// 参数：
//   - x, y: 初始位置
//   - generation: 代数
//   - baseAngle: 扇形发射基础角度
//   - rnd: 随机数源（测试时传入固定种子）
func New(x, y float64, generation int, baseAngle float64, rnd *rand.Rand) *Particle {
	p := &Particle{
		Generation: generation,
		Position:   Vec{X: x, Y: y},
		Scale:      0,
		Angle:      float64(MaxInitAngle - RandomInt(rnd, 0, 2*MaxInitAngle)),
		Alpha:      1,
		AlphaDecay: AlphaDecay,
		BaseAngle:  baseAngle,
	}

	if generation > 0 {
		p.ImageIndex = RandomInt(rnd, 1, PaletteSize-1)
		p.AlphaDecay += ChildDecayStep
		p.Velocity = Vec{
			X: RandomFrom(rnd, RandomFloat(rnd, -3, -1), RandomFloat(rnd, 1, 3)),
			Y: RandomFloat(rnd, -6, -3),
		}
	} else {
		p.Velocity = Vec{
			X: RandomFrom(rnd, RandomFloat(rnd, -5, -3), RandomFloat(rnd, 3, 5)),
			Y: RandomFloat(rnd, -8, -4),
		}
	}

	if p.Velocity.X < 0 {
		p.Spin = RandomFloat(rnd, -MaxSpin, 0)
	} else {
		p.Spin = RandomFloat(rnd, 0, MaxSpin)
	}

	return p
}

// Move 推进一帧物理状态
func (p *Particle) Move() {
	p.Position.X += p.Velocity.X
	p.Position.Y += p.Velocity.Y
	p.Velocity.X *= Friction
	p.Velocity.Y += Gravity
	p.Angle += p.Spin

	// 开始下落后才淡出
	if p.Velocity.Y > 0 {
		p.Alpha *= p.AlphaDecay
	}

	p.Scale = math.Min(p.Scale+ScaleStep, 1)
}

// Expired 透明度低于阈值时返回 true
func (p *Particle) Expired() bool {
	return p.Alpha < ExpireAlpha
}

// Descending 垂直速度为正（向下运动）
func (p *Particle) Descending() bool {
	return p.Velocity.Y > 0
}
