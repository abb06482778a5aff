// Package app 提供金钱火花窗口应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/decker502/moneysparkle/pkg/audio"
	"github.com/decker502/moneysparkle/pkg/config"
	"github.com/decker502/moneysparkle/pkg/game"
	"github.com/decker502/moneysparkle/pkg/render"
	"github.com/decker502/moneysparkle/pkg/systems"
	"github.com/decker502/moneysparkle/pkg/utils"
)

// 键盘调整的步长
const (
	countStep = 10
)

// Config 定义应用启动配置
type Config struct {
	// Sparkle 效果配置，nil 使用默认配置
	Sparkle *config.SparkleConfig
	// Settings 观看者偏好，nil 时只在内存中保存
	Settings *game.SettingsManager
	// Logger 可为 nil
	Logger *zap.Logger
	// Chime 爆发出现时的提示音，nil 时创建 ebiten 提示音
	Chime audio.Chime
	// ShowHUD 在左上角显示当前参数
	ShowHUD bool
}

// App 是金钱火花的应用包装器，实现 ebiten.Game 接口
//
// 每次点击或触摸都会在指针位置排队一次爆发。帧时钟在 Update 中推进，
// 所以粒子的更新和离屏绘制都发生在 ebiten 的更新 goroutine 上。
type App struct {
	cfg       *config.SparkleConfig
	settings  *game.SettingsManager
	logger    *zap.Logger
	chime     audio.Chime
	canvas    *render.Canvas
	clock     *systems.TickClock
	sequencer *systems.BurstSequencer
	showHUD   bool

	visible      atomic.Bool
	soundEnabled atomic.Bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
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
	logger = logger.Named("app")

	settings := cfg.Settings
	if settings == nil {
		settings = game.NewSettingsManager(nil, SettingsDefaults(sparkle), logger)
	}

	palette, err := sparkle.ParsePalette()
	if err != nil {
		return nil, err
	}

	atlas, err := render.NewGlyphAtlas(sparkle.FontSize, sparkle.Resolution)
	if err != nil {
		return nil, fmt.Errorf("字形图集创建失败: %w", err)
	}
	bitmaps, err := atlas.Prerender(sparkle.Glyph, palette)
	if err != nil {
		return nil, fmt.Errorf("字形预渲染失败: %w", err)
	}

	a := &App{
		cfg:      sparkle,
		settings: settings,
		logger:   logger,
		canvas:   render.NewCanvas(sparkle.Width, sparkle.Height, sparkle.Resolution),
		clock:    systems.NewTickClock(),
		showHUD:  cfg.ShowHUD,
	}

	a.chime = cfg.Chime
	if a.chime == nil {
		chime, err := audio.NewEbitenChime(settings.GetSettings().SoundVolume)
		if err != nil {
			// 没有声音也能运行
			logger.Warn("chime unavailable", zap.Error(err))
			a.chime = audio.Silent{}
		} else {
			a.chime = chime
		}
	}
	a.soundEnabled.Store(settings.GetSettings().SoundEnabled)

	a.sequencer = systems.NewBurstSequencer(a.canvas, a.clock, systems.VisibilityFunc(a.setVisible), bitmaps)
	a.sequencer.SetLogger(logger)
	a.sequencer.SetDefaults(sparkle.Count, sparkle.MaxGeneration)

	logger.Info("app initialized",
		zap.Int("width", sparkle.Width),
		zap.Int("height", sparkle.Height),
		zap.Float64("resolution", sparkle.Resolution),
		zap.Bool("persistentSettings", settings.Persistent()))

	return a, nil
}

// SettingsDefaults 由配置得到偏好设置的默认值
func SettingsDefaults(cfg *config.SparkleConfig) *game.SparkleSettings {
	defaults := game.DefaultSettings()
	defaults.Count = cfg.Count
	defaults.MaxGeneration = cfg.MaxGeneration
	return defaults
}

// setVisible 画布可见性开关，在爆发 goroutine 上调用
func (a *App) setVisible(visible bool) {
	a.visible.Store(visible)
	if visible && a.soundEnabled.Load() {
		a.chime.Play()
	}
}

// Visible 画布当前是否可见
func (a *App) Visible() bool {
	return a.visible.Load()
}

// Trigger 在逻辑坐标 (x, y) 排队一次爆发
// 使用当前偏好设置中的粒子数量和最大代数
func (a *App) Trigger(x, y float64) *systems.Burst {
	s := a.settings.GetSettings()
	cx, cy := utils.CanvasPoint(x, y, 0, 0, a.canvas.Resolution())
	return a.sequencer.Start(cx, cy,
		systems.WithCount(s.Count),
		systems.WithMaxGeneration(s.MaxGeneration))
}

// Sequencer 返回爆发调度器
func (a *App) Sequencer() *systems.BurstSequencer {
	return a.sequencer
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 移动端没有窗口和键盘
	if !utils.IsMobile() {
		a.updateWindow()
		a.handleKeys()
	}

	if ev, ok := utils.PollPointer(); ok {
		if x, y, ok := ev.Position(); ok {
			a.Trigger(x, y)
		}
	}

	a.step()
	return nil
}

// step 推进一帧：运行本帧之前请求的所有帧回调
func (a *App) step() {
	a.clock.Tick()
}

// updateWindow F11 切换全屏
func (a *App) updateWindow() {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Width, a.cfg.Height)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			a.settings.SetFullscreen(false)
		} else {
			ebiten.SetFullscreen(true)
			a.settings.SetFullscreen(true)
		}
		a.saveSettings()
	}
}

// handleKeys 方向键调整爆发参数，M 切换音效
func (a *App) handleKeys() {
	s := a.settings.GetSettings()
	changed := true

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		a.settings.SetCount(s.Count + countStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		a.settings.SetCount(s.Count - countStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		a.settings.SetMaxGeneration(s.MaxGeneration + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		a.settings.SetMaxGeneration(s.MaxGeneration - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		a.SetSoundEnabled(!s.SoundEnabled)
	default:
		changed = false
	}

	if changed {
		a.saveSettings()
	}
}

// SetSoundEnabled 打开或关闭提示音
func (a *App) SetSoundEnabled(enabled bool) {
	a.settings.SetSoundEnabled(enabled)
	a.soundEnabled.Store(enabled)
}

func (a *App) saveSettings() {
	s := a.settings.GetSettings()
	a.logger.Debug("settings changed",
		zap.Int("count", s.Count),
		zap.Int("maxGeneration", s.MaxGeneration),
		zap.Bool("sound", s.SoundEnabled))
	if err := a.settings.Save(); err != nil {
		a.logger.Warn("failed to save settings", zap.Error(err))
	}
}

// Draw 绘制画面
// 画布隐藏时只显示背景
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if a.visible.Load() {
		a.canvas.Composite(screen)
	}
	if a.showHUD {
		s := a.settings.GetSettings()
		sound := "off"
		if s.SoundEnabled {
			sound = "on"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf("count: %d  generation: %d  sound: %s", s.Count, s.MaxGeneration, sound))
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Width, a.cfg.Height
}

// Settings 返回偏好设置管理器
func (a *App) Settings() *game.SettingsManager {
	return a.settings
}
