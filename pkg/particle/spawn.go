package particle

import (
	"math"
	"math/rand"
)

// FanRange 扇形发射的半角（±45°）
const FanRange = math.Pi / 4

// Spawn 在 (x, y) 生成 count 个同代粒子
//
// BaseAngle 在 [-FanRange, +FanRange] 上均匀分布。
// count == 1 时只有一个粒子，BaseAngle 固定为 0（避免除以 count-1）；
// count <= 0 时不生成任何粒子。
func Spawn(x, y float64, count, generation int, rnd *rand.Rand) []*Particle {
	if count <= 0 {
		return nil
	}

	particles := make([]*Particle, 0, count)
	for i := 0; i < count; i++ {
		particles = append(particles, New(x, y, generation, FanAngle(i, count), rnd))
	}
	return particles
}

// FanAngle 返回 count 个粒子中第 i 个的基础角度
func FanAngle(i, count int) float64 {
	if count <= 1 {
		return 0
	}
	return -FanRange + 2*FanRange*float64(i)/float64(count-1)
}

// MaxBurstParticles 一次爆发允许的粒子总数上限
const MaxBurstParticles = 1_000_000

// BurstParticles 一次爆发最多产生的粒子总数（各代之和）
// 超过 MaxBurstParticles 时返回 MaxBurstParticles+1
func BurstParticles(count, maxGeneration int) int {
	if count <= 0 {
		return 0
	}
	children := ChildCount(count)
	total, batch := 0, count
	for g := 0; g <= maxGeneration; g++ {
		total += batch
		if total > MaxBurstParticles {
			return MaxBurstParticles + 1
		}
		batch *= children
	}
	return total
}

// ChildCount 返回一个粒子失效时生成的子代数量 ceil(count/2)
//
// count 是整次爆发的根粒子数，与失效粒子所在的代数无关。
func ChildCount(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + 1) / 2
}
