// Package game 保存观看者偏好设置
package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/decker502/moneysparkle/pkg/utils"
)

// AppName gdata 存储使用的应用名
const AppName = "moneysparkle"

// 设置的取值范围
const (
	MinCount         = 1
	MaxCount         = 100
	MinMaxGeneration = 0
	MaxMaxGeneration = 2
)

// SparkleSettings 观看者偏好
// 只保存爆发参数和音效开关，粒子状态从不持久化
type SparkleSettings struct {
	Count         int     `yaml:"count"`         // 每次爆发的根粒子数
	MaxGeneration int     `yaml:"maxGeneration"` // 最大代数
	SoundEnabled  bool    `yaml:"soundEnabled"`  // 音效开关
	SoundVolume   float64 `yaml:"soundVolume"`   // 音效音量 0.0 ~ 1.0
	Fullscreen    bool    `yaml:"fullscreen"`    // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *SparkleSettings {
	return &SparkleSettings{
		Count:         50,
		MaxGeneration: 1,
		SoundEnabled:  true,
		SoundVolume:   0.8,
		Fullscreen:    false,
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	defaults     SparkleSettings
	settings     *SparkleSettings // 当前设置
	logger       *zap.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "sparkle"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - defaults: 没有保存过设置时使用的值，nil 使用 DefaultSettings()
//   - logger: 可为 nil
//
// 加载失败不是致命错误，使用默认设置并记录警告。
func NewSettingsManager(gdataManager *gdata.Manager, defaults *SparkleSettings, logger *zap.Logger) *SettingsManager {
	if defaults == nil {
		defaults = DefaultSettings()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		defaults:     *defaults,
		logger:       logger.Named("settings"),
	}
	sm.resetToDefaults()

	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// OpenStorage 打开跨平台存储
// 失败时返回 nil 和错误，调用方可以继续以降级模式运行
//
// 存储目录见 StoragePath
func OpenStorage(appName string) (*gdata.Manager, error) {
	if err := utils.EnsureStorageDir(settingsObject); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return manager, nil
}

// StoragePath 设置文件所在目录，仅用于日志，未知时返回空串
func StoragePath() string {
	return utils.GetStoragePath(settingsObject)
}

func (sm *SettingsManager) resetToDefaults() {
	s := sm.defaults
	sm.settings = &s
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置。
// 超出范围的值被限制到合法范围。
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.resetToDefaults()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.resetToDefaults()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.resetToDefaults()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 从默认值开始反序列化，缺失字段保留默认值
	loaded := sm.defaults
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.resetToDefaults()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	loaded.Count = clampInt(loaded.Count, MinCount, MaxCount)
	loaded.MaxGeneration = clampInt(loaded.MaxGeneration, MinMaxGeneration, MaxMaxGeneration)
	loaded.SoundVolume = clampVolume(loaded.SoundVolume)

	sm.settings = &loaded
	sm.logger.Debug("settings loaded",
		zap.Int("count", loaded.Count),
		zap.Int("maxGeneration", loaded.MaxGeneration),
		zap.Bool("sound", loaded.SoundEnabled))
	return nil
}

// Save 保存设置到 gdata
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.logger.Debug("settings saved")
	return nil
}

// Persistent 是否能够持久化
func (sm *SettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *SparkleSettings {
	return sm.settings
}

// SetCount 设置根粒子数，限制在 [MinCount, MaxCount]
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetCount(count int) {
	sm.settings.Count = clampInt(count, MinCount, MaxCount)
}

// SetMaxGeneration 设置最大代数，限制在 [MinMaxGeneration, MaxMaxGeneration]
func (sm *SettingsManager) SetMaxGeneration(generation int) {
	sm.settings.MaxGeneration = clampInt(generation, MinMaxGeneration, MaxMaxGeneration)
}

// SetSoundEnabled 设置音效开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// SetSoundVolume 设置音效音量，限制在 0.0 ~ 1.0
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
