// Package simulation 无头运行爆发序列并汇总每帧统计
//
// 使用 ImmediateClock 和 Recorder，不需要窗口或终端，
// 用于 `moneysparkle simulate` 以及参数调优。
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/decker502/moneysparkle/pkg/config"
	"github.com/decker502/moneysparkle/pkg/render"
	"github.com/decker502/moneysparkle/pkg/systems"
)

// Options 模拟参数
type Options struct {
	Bursts int   // 依次触发的爆发数
	Seed   int64 // 随机种子，相同种子得到相同结果
}

// BurstSummary 单次爆发的统计
type BurstSummary struct {
	ID          uint64
	X, Y        float64
	Ticks       int
	PeakActive  int
	Spawned     int
	Expired     int
	Generations int
}

// Report 模拟结果
type Report struct {
	Bursts []BurstSummary
	// Active 每帧结束后的活跃粒子数，按爆发顺序首尾相接
	Active []float64
	// Draws 绘制调用总数
	Draws int
	// Clears 清屏次数
	Clears int
}

// TotalTicks 所有爆发的帧数之和
func (r *Report) TotalTicks() int {
	return len(r.Active)
}

// PeakActive 所有爆发中的最大活跃粒子数
func (r *Report) PeakActive() int {
	peak := 0
	for _, b := range r.Bursts {
		if b.PeakActive > peak {
			peak = b.PeakActive
		}
	}
	return peak
}

// Run 在画布内随机位置依次触发 opts.Bursts 次爆发，等待全部结束
func Run(ctx context.Context, cfg *config.SparkleConfig, opts Options, logger *zap.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Bursts <= 0 {
		return nil, fmt.Errorf("bursts must be positive, got %d", opts.Bursts)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	palette, err := cfg.ParsePalette()
	if err != nil {
		return nil, err
	}
	glyphs, err := render.PlaceholderGlyphs{}.Prerender(cfg.Glyph, palette)
	if err != nil {
		return nil, err
	}

	recorder := render.NewRecorder()
	rnd := rand.New(rand.NewSource(opts.Seed))

	sequencer := systems.NewBurstSequencer(recorder, systems.ImmediateClock{}, nil, glyphs)
	sequencer.SetLogger(logger.Named("simulate"))
	sequencer.SetRand(rnd)
	sequencer.SetDefaults(cfg.Count, cfg.MaxGeneration)

	var (
		mu      sync.Mutex
		report  = &Report{}
		current = map[uint64]*BurstSummary{}
	)
	sequencer.OnTick(func(stats systems.TickStats) {
		mu.Lock()
		defer mu.Unlock()
		report.Active = append(report.Active, float64(stats.Active))
		b := current[stats.BurstID]
		if b == nil {
			return
		}
		b.Ticks = stats.Tick
		b.Expired += stats.Expired
		b.Spawned += stats.Spawned
		if stats.Active > b.PeakActive {
			b.PeakActive = stats.Active
		}
	})

	width, height := cfg.CanvasSize()

	// 先确定所有原点再排队，随机源在爆发开始后只由调度器使用
	origins := make([][2]float64, opts.Bursts)
	for i := range origins {
		origins[i] = [2]float64{rnd.Float64() * float64(width), rnd.Float64() * float64(height)}
	}

	bursts := make([]*systems.Burst, 0, opts.Bursts)
	mu.Lock()
	for _, o := range origins {
		b := sequencer.Start(o[0], o[1])
		current[b.ID] = &BurstSummary{ID: b.ID, X: b.X, Y: b.Y, Generations: b.MaxGeneration + 1}
		bursts = append(bursts, b)
	}
	mu.Unlock()

	for _, b := range bursts {
		if err := b.Wait(ctx); err != nil {
			return nil, fmt.Errorf("burst %d: %w", b.ID, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, b := range bursts {
		report.Bursts = append(report.Bursts, *current[b.ID])
	}
	report.Draws = recorder.Draws()
	report.Clears = recorder.Clears()

	logger.Debug("simulation finished",
		zap.Int("bursts", len(report.Bursts)),
		zap.Int("ticks", report.TotalTicks()),
		zap.Int("draws", report.Draws))
	return report, nil
}

// Plot 把活跃粒子数绘制成 ASCII 折线图
func Plot(r *Report, height, width int) string {
	if len(r.Active) == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption("active particles per tick"),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.Plot(r.Active, opts...)
}

// Summary 逐个爆发的文字汇总
func Summary(r *Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s %-16s %6s %6s %8s %8s\n", "burst", "origin", "ticks", "peak", "spawned", "expired")
	for _, b := range r.Bursts {
		origin := fmt.Sprintf("(%.0f, %.0f)", b.X, b.Y)
		fmt.Fprintf(&sb, "%-6d %-16s %6d %6d %8d %8d\n", b.ID, origin, b.Ticks, b.PeakActive, b.Spawned, b.Expired)
	}
	fmt.Fprintf(&sb, "\ntotal ticks: %d  peak active: %d  draws: %d  clears: %d\n",
		r.TotalTicks(), r.PeakActive(), r.Draws, r.Clears)
	return sb.String()
}
