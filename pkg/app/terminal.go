package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/decker502/moneysparkle/pkg/audio"
	"github.com/decker502/moneysparkle/pkg/config"
	"github.com/decker502/moneysparkle/pkg/game"
	"github.com/decker502/moneysparkle/pkg/render"
	"github.com/decker502/moneysparkle/pkg/systems"
)

// TerminalConfig 终端模式的启动配置
type TerminalConfig struct {
	Sparkle  *config.SparkleConfig
	Settings *game.SettingsManager
	Logger   *zap.Logger
	// Chime nil 时不发声
	Chime audio.Chime
	// Screen nil 时创建真实终端
	Screen tcell.Screen
}

// TerminalApp 把金钱火花渲染到终端
//
// 鼠标左键按下时在对应单元格排队一次爆发。帧时钟由主循环的 ticker 推进，
// 事件处理和帧推进都在主循环 goroutine 上进行。
type TerminalApp struct {
	cfg       *config.SparkleConfig
	screen    tcell.Screen
	surface   *render.TerminalSurface
	clock     *systems.TickClock
	sequencer *systems.BurstSequencer
	settings  *game.SettingsManager
	chime     audio.Chime
	logger    *zap.Logger

	visible      atomic.Bool
	soundEnabled atomic.Bool
	mouseDown    bool
}

// NewTerminalApp 初始化终端和爆发调度器
// 调用方负责在结束时调用 Close
func NewTerminalApp(cfg TerminalConfig) (*TerminalApp, error) {
	sparkle := cfg.Sparkle
	if sparkle == nil {
		sparkle = config.DefaultSparkleConfig()
	}
	if err := sparkle.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("term")

	settings := cfg.Settings
	if settings == nil {
		settings = game.NewSettingsManager(nil, SettingsDefaults(sparkle), logger)
	}

	chime := cfg.Chime
	if chime == nil {
		chime = audio.Silent{}
	}

	palette, err := sparkle.ParsePalette()
	if err != nil {
		return nil, err
	}
	glyphs, err := render.TerminalGlyphs{}.Prerender(sparkle.Glyph, palette)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare glyphs: %w", err)
	}

	screen := cfg.Screen
	if screen == nil {
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to create screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()

	t := &TerminalApp{
		cfg:      sparkle,
		screen:   screen,
		surface:  render.NewTerminalSurface(screen, sparkle.Terminal.CellWidth, sparkle.Terminal.CellHeight),
		clock:    systems.NewTickClock(),
		settings: settings,
		chime:    chime,
		logger:   logger,
	}
	t.soundEnabled.Store(settings.GetSettings().SoundEnabled)

	t.sequencer = systems.NewBurstSequencer(t.surface, t.clock, systems.VisibilityFunc(t.setVisible), glyphs)
	t.sequencer.SetLogger(logger)
	t.sequencer.SetDefaults(sparkle.Count, sparkle.MaxGeneration)

	w, h := screen.Size()
	logger.Info("terminal initialized", zap.Int("cols", w), zap.Int("rows", h))
	return t, nil
}

func (t *TerminalApp) setVisible(visible bool) {
	t.visible.Store(visible)
	if visible && t.soundEnabled.Load() {
		t.chime.Play()
	}
}

// Visible 画布当前是否可见
func (t *TerminalApp) Visible() bool {
	return t.visible.Load()
}

// Sequencer 返回爆发调度器
func (t *TerminalApp) Sequencer() *systems.BurstSequencer {
	return t.sequencer
}

// Trigger 在单元格 (col, row) 排队一次爆发
func (t *TerminalApp) Trigger(col, row int) *systems.Burst {
	s := t.settings.GetSettings()
	x, y := t.surface.CellToPixel(col, row)
	return t.sequencer.Start(x, y,
		systems.WithCount(s.Count),
		systems.WithMaxGeneration(s.MaxGeneration))
}

// HandleEvent 处理一个终端事件，返回 false 表示退出
func (t *TerminalApp) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		t.handleKey(ev)

	case *tcell.EventMouse:
		// 只在按下的那一刻触发，按住拖动不会连续触发
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !t.mouseDown {
			col, row := ev.Position()
			t.Trigger(col, row)
		}
		t.mouseDown = pressed

	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *TerminalApp) handleKey(ev *tcell.EventKey) {
	s := t.settings.GetSettings()
	switch ev.Key() {
	case tcell.KeyUp:
		t.settings.SetCount(s.Count + countStep)
	case tcell.KeyDown:
		t.settings.SetCount(s.Count - countStep)
	case tcell.KeyRight:
		t.settings.SetMaxGeneration(s.MaxGeneration + 1)
	case tcell.KeyLeft:
		t.settings.SetMaxGeneration(s.MaxGeneration - 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'm':
			t.settings.SetSoundEnabled(!s.SoundEnabled)
			t.soundEnabled.Store(!s.SoundEnabled)
		case ' ':
			// 空格在屏幕中央触发
			w, h := t.screen.Size()
			t.Trigger(w/2, h/2)
			return
		default:
			return
		}
	default:
		return
	}

	if err := t.settings.Save(); err != nil {
		t.logger.Warn("failed to save settings", zap.Error(err))
	}
}

// Frame 推进一帧并刷新终端
func (t *TerminalApp) Frame() {
	t.clock.Tick()
	if !t.visible.Load() {
		t.screen.Clear()
	}
	t.drawStatus()
	t.surface.Show()
}

// drawStatus 在最后一行显示当前参数
func (t *TerminalApp) drawStatus() {
	s := t.settings.GetSettings()
	sound := "off"
	if s.SoundEnabled {
		sound = "on"
	}
	line := fmt.Sprintf(" click: burst  ↑↓ count %d  ←→ generation %d  m sound %s  esc quit ", s.Count, s.MaxGeneration, sound)

	_, h := t.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	col := 0
	for _, r := range line {
		t.screen.SetContent(col, h-1, r, nil, style)
		col++
	}
}

// Run 运行主循环，直到按下 Esc 或 ctx 取消
func (t *TerminalApp) Run(ctx context.Context) error {
	tps := t.cfg.TPS
	if tps <= 0 {
		tps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				// Fini 之后返回 nil
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !t.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			t.Frame()
		}
	}
}

// Close 恢复终端
func (t *TerminalApp) Close() {
	t.screen.Fini()
}
