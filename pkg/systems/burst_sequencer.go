// Package systems 包含金钱火花效果的调度逻辑
//
// BurstSequencer 负责：
//  1. 串行化多次触发（同一时刻最多一个爆发处于活动状态）
//  2. 每帧推进粒子集合（清屏 → 更新/移除/生成子代 → 等待下一帧）
//  3. 在爆发开始前显示画布、结束后隐藏画布
package systems

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/decker502/moneysparkle/pkg/particle"
)

// 默认爆发参数
const (
	DefaultCount         = 50
	DefaultMaxGeneration = 1
)

// ErrBurstFailed 爆发运行期间协作者（绘制表面、可见性开关等）发生故障
var ErrBurstFailed = errors.New("burst failed")

// VisibilityToggle 画布可见性开关
type VisibilityToggle interface {
	SetVisible(visible bool)
}

// VisibilityFunc 函数适配器
type VisibilityFunc func(visible bool)

// SetVisible 调用函数本身
func (f VisibilityFunc) SetVisible(visible bool) { f(visible) }

// TickStats 单帧推进后的统计
type TickStats struct {
	BurstID uint64
	Tick    int // 从 1 开始
	Active  int // 本帧结束后的活跃粒子数（含新生成的子代）
	Expired int // 本帧移除的粒子数
	Spawned int // 本帧生成的子代粒子数
}

// BurstOption 修改单次爆发的参数
type BurstOption func(*Burst)

// WithCount 设置第 0 代粒子数量
func WithCount(count int) BurstOption {
	return func(b *Burst) { b.Count = count }
}

// WithMaxGeneration 设置子代生成的最大深度
func WithMaxGeneration(generation int) BurstOption {
	return func(b *Burst) { b.MaxGeneration = generation }
}

// Burst 一次从触发到完全淡出的动画
type Burst struct {
	ID            uint64
	X, Y          float64
	Count         int
	MaxGeneration int

	done  chan struct{}
	err   error
	ticks int
}

// Done 爆发结束（包括隐藏画布）后关闭
func (b *Burst) Done() <-chan struct{} {
	return b.done
}

// Wait 等待爆发结束
// ctx 取消只会停止等待，不会中止正在运行的爆发
func (b *Burst) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err 返回爆发的运行错误，只有在 Done() 关闭后才有意义
func (b *Burst) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

// Ticks 返回爆发推进的帧数，只有在 Done() 关闭后才有意义
func (b *Burst) Ticks() int {
	select {
	case <-b.done:
		return b.ticks
	default:
		return 0
	}
}

// BurstSequencer 爆发动画的调度器
//
// 每次 Start 都会把新的爆发接在队尾之后：前一个爆发完整结束（显示 → 动画 → 隐藏）
// 之后，下一个才开始。Set* 方法必须在第一次 Start 之前调用。
type BurstSequencer struct {
	surface    particle.Surface
	clock      FrameClock
	visibility VisibilityToggle
	palette    []particle.Bitmap

	logger   *zap.Logger
	rnd      *rand.Rand
	observer func(TickStats)

	defaultCount         int
	defaultMaxGeneration int

	mu     sync.Mutex
	tail   <-chan struct{} // 队尾爆发的 done 通道
	nextID uint64
}

// NewBurstSequencer 创建调度器
//
// 参数：
//   - surface: 绘制表面（可为 nil，此时只推进物理不绘制）
//   - clock: 帧时钟
//   - visibility: 可见性开关（可为 nil）
//   - palette: 按 ImageIndex 索引的预渲染字形
func NewBurstSequencer(surface particle.Surface, clock FrameClock, visibility VisibilityToggle, palette []particle.Bitmap) *BurstSequencer {
	idle := make(chan struct{})
	close(idle)

	return &BurstSequencer{
		surface:              surface,
		clock:                clock,
		visibility:           visibility,
		palette:              palette,
		logger:               zap.NewNop(),
		rnd:                  rand.New(rand.NewSource(time.Now().UnixNano())),
		defaultCount:         DefaultCount,
		defaultMaxGeneration: DefaultMaxGeneration,
		tail:                 idle,
	}
}

// SetLogger 设置日志记录器
func (s *BurstSequencer) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// SetRand 设置随机数源（测试和模拟时使用固定种子）
func (s *BurstSequencer) SetRand(rnd *rand.Rand) {
	if rnd != nil {
		s.rnd = rnd
	}
}

// SetDefaults 设置 Start 未指定时使用的粒子数量和最大代数
func (s *BurstSequencer) SetDefaults(count, maxGeneration int) {
	s.defaultCount = count
	s.defaultMaxGeneration = maxGeneration
}

// OnTick 设置每帧统计回调
// 回调在爆发所在的 goroutine 上调用，不在渲染 goroutine 上
func (s *BurstSequencer) OnTick(observer func(TickStats)) {
	s.observer = observer
}

// Start 在 (x, y) 排队一次新的爆发
func (s *BurstSequencer) Start(x, y float64, opts ...BurstOption) *Burst {
	b := &Burst{
		X:             x,
		Y:             y,
		Count:         s.defaultCount,
		MaxGeneration: s.defaultMaxGeneration,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	s.mu.Lock()
	s.nextID++
	b.ID = s.nextID
	prev := s.tail
	s.tail = b.done
	s.mu.Unlock()

	s.logger.Debug("burst queued",
		zap.Uint64("burst", b.ID),
		zap.Float64("x", x),
		zap.Float64("y", y),
		zap.Int("count", b.Count),
		zap.Int("maxGeneration", b.MaxGeneration))

	go func() {
		<-prev
		b.err = s.run(b)
		close(b.done)
	}()

	return b
}

// Wait 等待当前队列中的所有爆发结束
func (s *BurstSequencer) Wait(ctx context.Context) error {
	s.mu.Lock()
	tail := s.tail
	s.mu.Unlock()

	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// frameResult 帧回调交回给爆发 goroutine 的结果
type frameResult struct {
	particles []*particle.Particle
	stats     TickStats
	failure   error
}

// run 执行一次爆发：显示 → 生成第 0 代 → 逐帧推进直到粒子耗尽 → 隐藏
func (s *BurstSequencer) run(b *Burst) (err error) {
	shown := false
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: burst %d: %v", ErrBurstFailed, b.ID, r)
		}
		if err != nil {
			s.logger.Error("burst aborted", zap.Uint64("burst", b.ID), zap.Error(err))
			if shown {
				s.hideAfterFailure()
			}
		}
	}()

	s.setVisible(true)
	shown = true
	s.logger.Debug("burst started", zap.Uint64("burst", b.ID))

	active := particle.Spawn(b.X, b.Y, b.Count, 0, s.rnd)

	for {
		result := make(chan frameResult, 1)
		s.clock.RequestFrame(func() {
			result <- s.advanceFrame(b, active)
		})

		r := <-result
		if r.failure != nil {
			return r.failure
		}

		active = r.particles
		b.ticks = r.stats.Tick
		if s.observer != nil {
			s.observer(r.stats)
		}

		if len(active) == 0 {
			break
		}
	}

	s.setVisible(false)
	shown = false
	s.logger.Debug("burst finished", zap.Uint64("burst", b.ID), zap.Int("ticks", b.ticks))
	return nil
}

// advanceFrame 帧回调：在帧时钟的 goroutine 上推进一帧
// 协作者的 panic 在这里捕获，避免打断宿主的帧循环
func (s *BurstSequencer) advanceFrame(b *Burst, active []*particle.Particle) (r frameResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r = frameResult{failure: fmt.Errorf("%w: burst %d tick %d: %v", ErrBurstFailed, b.ID, b.ticks+1, rec)}
		}
	}()

	next, expired, spawned := s.advance(b, active)
	return frameResult{
		particles: next,
		stats: TickStats{
			BurstID: b.ID,
			Tick:    b.ticks + 1,
			Active:  len(next),
			Expired: expired,
			Spawned: spawned,
		},
	}
}

// advance 推进一帧
//
// 失效的粒子被移除，若代数小于 MaxGeneration 则在其位置生成子代；
// 子代追加在存活粒子之后，本帧不绘制。
func (s *BurstSequencer) advance(b *Burst, active []*particle.Particle) (next []*particle.Particle, expired, spawned int) {
	if s.surface != nil {
		s.surface.Clear()
	}

	survivors := make([]*particle.Particle, 0, len(active))
	var children []*particle.Particle

	for _, p := range active {
		if p.Expired() {
			expired++
			if p.Generation < b.MaxGeneration {
				count := particle.ChildCount(b.Count)
				children = append(children, particle.Spawn(p.Position.X, p.Position.Y, count, p.Generation+1, s.rnd)...)
			}
			continue
		}

		p.Move()
		p.Render(s.surface, s.bitmap(p.ImageIndex))
		survivors = append(survivors, p)
	}

	return append(survivors, children...), expired, len(children)
}

// bitmap 返回调色板中的字形，索引越界时返回 nil（不绘制）
func (s *BurstSequencer) bitmap(index int) particle.Bitmap {
	if index < 0 || index >= len(s.palette) {
		return nil
	}
	return s.palette[index]
}

func (s *BurstSequencer) setVisible(visible bool) {
	if s.visibility != nil {
		s.visibility.SetVisible(visible)
	}
}

// hideAfterFailure 尽力隐藏画布，忽略开关自身的故障
func (s *BurstSequencer) hideAfterFailure() {
	defer func() { _ = recover() }()
	s.setVisible(false)
}
