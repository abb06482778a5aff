package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/decker502/moneysparkle/pkg/particle"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid sparkle config")

// SparkleConfig 金钱火花效果配置
//
// 配置文件位置: data/sparkle.yaml（可通过 --config 指定）
// 未出现在文件中的字段保留默认值。
type SparkleConfig struct {
	// Width, Height 画布逻辑尺寸（像素）
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Resolution 物理像素与逻辑像素之比，宽高统一缩放
	Resolution float64 `yaml:"resolution"`

	// Count 第 0 代粒子数量
	Count int `yaml:"count"`

	// MaxGeneration 子代生成的最大深度（1 = 只有根粒子会生成子代）
	MaxGeneration int `yaml:"maxGeneration"`

	// Glyph 粒子字形
	Glyph string `yaml:"glyph"`

	// FontSize 第 0 代字形字号（逻辑像素），子代字形为一半
	FontSize float64 `yaml:"fontSize"`

	// Palette 调色板，第一个颜色用于根粒子，其余随机用于子代粒子
	Palette []string `yaml:"palette"`

	// TPS 每秒帧数
	TPS int `yaml:"tps"`

	// Logging 日志配置
	Logging LoggingConfig `yaml:"logging"`

	// Terminal 终端渲染配置
	Terminal TerminalConfig `yaml:"terminal"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // "console" 或 "json"
}

// TerminalConfig 终端渲染配置
// 终端被视为一块像素画布，每个字符单元格对应 CellWidth × CellHeight 像素
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cellWidth"`
	CellHeight float64 `yaml:"cellHeight"`
}

// DefaultSparkleConfig 返回默认配置
func DefaultSparkleConfig() *SparkleConfig {
	return &SparkleConfig{
		Width:         800,
		Height:        600,
		Resolution:    2,
		Count:         50,
		MaxGeneration: 1,
		Glyph:         "$",
		FontSize:      35,
		Palette:       []string{"#00aa00", "#ff0000", "#3366ff", "#cccc00"},
		TPS:           60,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Terminal: TerminalConfig{
			CellWidth:  8,
			CellHeight: 16,
		},
	}
}

// LoadSparkleConfig 加载金钱火花配置
//
// 参数:
//   - path: 配置文件路径
//
// 返回:
//   - *SparkleConfig: 在默认配置之上覆盖文件内容后的配置
//   - error: 读取、解析或校验失败时返回错误
func LoadSparkleConfig(path string) (*SparkleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sparkle config: %w", err)
	}

	return ParseSparkleConfig(data)
}

// ParseSparkleConfig 从 YAML 数据解析配置
func ParseSparkleConfig(data []byte) (*SparkleConfig, error) {
	cfg := DefaultSparkleConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sparkle config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 校验配置
func (c *SparkleConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution %v must be positive", ErrInvalidConfig, c.Resolution)
	}
	if c.Count < 1 {
		return fmt.Errorf("%w: count %d must be at least 1", ErrInvalidConfig, c.Count)
	}
	if c.MaxGeneration < 0 {
		return fmt.Errorf("%w: maxGeneration %d must not be negative", ErrInvalidConfig, c.MaxGeneration)
	}
	// 每一代都是上一代的 ceil(count/2) 倍
	if n := particle.BurstParticles(c.Count, c.MaxGeneration); n > particle.MaxBurstParticles {
		return fmt.Errorf("%w: count %d with maxGeneration %d exceeds %d particles per burst",
			ErrInvalidConfig, c.Count, c.MaxGeneration, particle.MaxBurstParticles)
	}
	if c.Glyph == "" {
		return fmt.Errorf("%w: glyph must not be empty", ErrInvalidConfig)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("%w: fontSize %v must be positive", ErrInvalidConfig, c.FontSize)
	}
	if len(c.Palette) != particle.PaletteSize {
		return fmt.Errorf("%w: palette needs %d colors, got %d", ErrInvalidConfig, particle.PaletteSize, len(c.Palette))
	}
	if _, err := c.ParsePalette(); err != nil {
		return err
	}
	if c.TPS <= 0 {
		return fmt.Errorf("%w: tps %d must be positive", ErrInvalidConfig, c.TPS)
	}
	if c.Logging.Format != "" && c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: logging format %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return fmt.Errorf("%w: terminal cell %vx%v must be positive", ErrInvalidConfig, c.Terminal.CellWidth, c.Terminal.CellHeight)
	}
	return nil
}

// ParsePalette 将十六进制颜色解析为 color.Color
func (c *SparkleConfig) ParsePalette() ([]color.Color, error) {
	palette := make([]color.Color, 0, len(c.Palette))
	for i, hex := range c.Palette {
		col, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("%w: palette[%d] %q: %v", ErrInvalidConfig, i, hex, err)
		}
		palette = append(palette, col)
	}
	return palette, nil
}

// CanvasSize 返回画布的物理像素尺寸
func (c *SparkleConfig) CanvasSize() (int, int) {
	return int(float64(c.Width) * c.Resolution), int(float64(c.Height) * c.Resolution)
}
