package particle

import "math/rand"

// RandomFloat 返回 [min, max) 区间内的均匀随机浮点数
func RandomFloat(rnd *rand.Rand, min, max float64) float64 {
	return rnd.Float64()*(max-min) + min
}

// RandomInt 返回 [min, max] 闭区间内的均匀随机整数
func RandomInt(rnd *rand.Rand, min, max int) int {
	if max < min {
		return min
	}
	return min + rnd.Intn(max-min+1)
}

// RandomFrom 从候选值中等概率选取一个
func RandomFrom[T any](rnd *rand.Rand, values ...T) T {
	return values[rnd.Intn(len(values))]
}
