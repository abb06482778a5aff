package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decker502/moneysparkle/pkg/app"
	"github.com/decker502/moneysparkle/pkg/audio"
	"github.com/decker502/moneysparkle/pkg/config"
	"github.com/decker502/moneysparkle/pkg/embedded"
	"github.com/decker502/moneysparkle/pkg/game"
	"github.com/decker502/moneysparkle/pkg/logging"
	"github.com/decker502/moneysparkle/pkg/simulation"
)

const defaultConfigPath = "data/sparkle.yaml"

var (
	configFile string
	verbose    bool

	// 窗口模式
	count      int
	generation int
	showHUD    bool

	// 终端模式
	cellWidth  float64
	cellHeight float64
	sound      bool
	logFile    string

	// 模拟
	bursts     int
	seed       int64
	plotHeight int
	plotWidth  int
)

func main() {
	embedded.Init(dataFS)

	rootCmd := &cobra.Command{
		Use:           "moneysparkle",
		Short:         "money sparkle particle bursts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWindow,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml), defaults to the embedded "+defaultConfigPath)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&count, "count", 0, "root particles per burst (overrides config)")
	rootCmd.PersistentFlags().IntVar(&generation, "generation", 0, "max child generation (overrides config)")
	rootCmd.Flags().BoolVar(&showHUD, "hud", true, "show current parameters in the window")

	termCmd := &cobra.Command{
		Use:   "term",
		Short: "render bursts in the terminal, click to spawn",
		RunE:  runTerminal,
	}
	termCmd.Flags().Float64Var(&cellWidth, "cell-width", 0, "canvas pixels per terminal column (overrides config)")
	termCmd.Flags().Float64Var(&cellHeight, "cell-height", 0, "canvas pixels per terminal row (overrides config)")
	termCmd.Flags().BoolVar(&sound, "sound", true, "play a chime when a burst appears")
	termCmd.Flags().StringVar(&logFile, "log-file", "moneysparkle.log", "log file (the terminal is used for drawing)")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run bursts headless and plot the active particle count",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&bursts, "bursts", 3, "number of bursts")
	simulateCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	simulateCmd.Flags().IntVar(&plotHeight, "plot-height", 12, "plot height")
	simulateCmd.Flags().IntVar(&plotWidth, "plot-width", 80, "plot width (0 = one column per tick)")

	rootCmd.AddCommand(termCmd, simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig 读取配置文件（未指定时使用内嵌的默认配置），再应用命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.SparkleConfig, error) {
	var (
		cfg *config.SparkleConfig
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadSparkleConfig(configFile)
	} else {
		var data []byte
		data, err = embedded.ReadFile(defaultConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded config: %w", err)
		}
		cfg, err = config.ParseSparkleConfig(data)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("generation") {
		cfg.MaxGeneration = generation
	}
	if flags.Changed("cell-width") {
		cfg.Terminal.CellWidth = cellWidth
	}
	if flags.Changed("cell-height") {
		cfg.Terminal.CellHeight = cellHeight
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSettings 打开偏好设置，存储不可用时以降级模式运行
// 命令行显式指定的参数覆盖保存的偏好
func openSettings(cmd *cobra.Command, cfg *config.SparkleConfig, logger *zap.Logger) *game.SettingsManager {
	storage, err := game.OpenStorage(game.AppName)
	if err != nil {
		logger.Warn("settings storage unavailable, preferences will not be saved", zap.Error(err))
	} else if path := game.StoragePath(); path != "" {
		logger.Debug("settings storage", zap.String("path", path))
	}
	settings := game.NewSettingsManager(storage, app.SettingsDefaults(cfg), logger)

	if cmd.Flags().Changed("count") {
		settings.SetCount(cfg.Count)
	}
	if cmd.Flags().Changed("generation") {
		settings.SetMaxGeneration(cfg.MaxGeneration)
	}
	return settings
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	settings := openSettings(cmd, cfg, logger)

	sparkleApp, err := app.NewApp(app.Config{
		Sparkle:  cfg,
		Settings: settings,
		Logger:   logger,
		ShowHUD:  showHUD,
	})
	if err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Money Sparkle")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(sparkleApp); err != nil {
		return err
	}

	if err := settings.Save(); err != nil {
		logger.Warn("failed to save settings", zap.Error(err))
	}
	return nil
}

func runTerminal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.ToFile(cfg.Logging, verbose, logFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	settings := openSettings(cmd, cfg, logger)

	var chime audio.Chime = audio.Silent{}
	if sound {
		beepChime, err := audio.NewBeepChime(settings.GetSettings().SoundVolume)
		if err != nil {
			// 没有声音也能运行
			logger.Warn("audio initialization failed", zap.Error(err))
		} else {
			defer beepChime.Close()
			chime = beepChime
		}
	}

	term, err := app.NewTerminalApp(app.TerminalConfig{
		Sparkle:  cfg,
		Settings: settings,
		Logger:   logger,
		Chime:    chime,
	})
	if err != nil {
		return err
	}
	defer term.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return term.Run(ctx)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := simulation.Run(ctx, cfg, simulation.Options{Bursts: bursts, Seed: seed}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("simulate: %d bursts, count %d, max generation %d, seed %d\n\n",
		bursts, cfg.Count, cfg.MaxGeneration, seed)
	fmt.Println(simulation.Plot(report, plotHeight, plotWidth))
	fmt.Println()
	fmt.Print(simulation.Summary(report))
	return nil
}
