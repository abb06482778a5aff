//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.moneysparkle -o build/android/moneysparkle.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/MoneySparkle.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"
	"go.uber.org/zap"

	"github.com/decker502/moneysparkle/pkg/app"
	"github.com/decker502/moneysparkle/pkg/config"
	"github.com/decker502/moneysparkle/pkg/game"
	"github.com/decker502/moneysparkle/pkg/logging"
)

func init() {
	cfg := config.DefaultSparkleConfig()

	logger, err := logging.New(cfg.Logging, true)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	// 存储不可用时以降级模式运行
	storage, err := game.OpenStorage(game.AppName)
	if err != nil {
		logger.Warn("settings storage unavailable", zap.Error(err))
	}
	settings := game.NewSettingsManager(storage, app.SettingsDefaults(cfg), logger)

	sparkleApp, err := app.NewApp(app.Config{
		Sparkle:  cfg,
		Settings: settings,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(sparkleApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
