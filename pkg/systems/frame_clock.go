package systems

import "sync"

// FrameClock 帧时钟
// RequestFrame 在下一次画面刷新前调用一次回调（requestAnimationFrame 语义）
type FrameClock interface {
	RequestFrame(callback func())
}

// TickClock 由宿主驱动的帧时钟
//
// 宿主（ebiten 的 Update 或终端的刷新循环）每帧调用一次 Tick()，
// Tick 运行在本次 Tick 之前登记的所有回调；回调中新登记的请求留到下一帧。
// 所有回调都在调用 Tick 的 goroutine 上执行，因此同一帧内只有一个写入者。
type TickClock struct {
	mu      sync.Mutex
	pending []func()
	frame   uint64
}

// NewTickClock 创建帧时钟
func NewTickClock() *TickClock {
	return &TickClock{}
}

// RequestFrame 登记下一帧的回调
func (c *TickClock) RequestFrame(callback func()) {
	if callback == nil {
		return
	}
	c.mu.Lock()
	c.pending = append(c.pending, callback)
	c.mu.Unlock()
}

// Tick 推进一帧，返回本帧执行的回调数量
func (c *TickClock) Tick() int {
	c.mu.Lock()
	callbacks := c.pending
	c.pending = nil
	c.frame++
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return len(callbacks)
}

// Frame 返回已推进的帧数
func (c *TickClock) Frame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Pending 返回等待下一帧的回调数量
func (c *TickClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// ImmediateClock 立即执行回调的帧时钟
// 用于无头模拟和测试：整个动画在调用方 goroutine 中一次跑完
type ImmediateClock struct{}

// RequestFrame 同步执行回调
func (ImmediateClock) RequestFrame(callback func()) {
	if callback != nil {
		callback()
	}
}
