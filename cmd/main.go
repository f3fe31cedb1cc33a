package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"armor-aim/config"
	telegram "armor-aim/internal/api"
	app "armor-aim/internal/application"
	"armor-aim/internal/container"
	"armor-aim/internal/infrastructure/calibration"
	"armor-aim/internal/infrastructure/pose"
	"armor-aim/internal/infrastructure/storage"
	"armor-aim/internal/infrastructure/vision"
	"armor-aim/internal/logger"
	"armor-aim/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogMode); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger.Log()); err != nil {
		logger.Log().Error("aim stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	calib, err := calibration.Load(cfg.CalibrationPath)
	if err != nil {
		return err
	}
	solver, err := pose.NewSolver(calib, cfg.Params.Pose, lg.Named("pose"))
	if err != nil {
		return err
	}

	classifier, err := vision.NewDigitNet(cfg.ModelPath, cfg.Params.Classifier)
	if err != nil {
		return err
	}
	defer classifier.Close()

	source, err := vision.OpenCapture(cfg.Video)
	if err != nil {
		return err
	}
	defer source.Close()

	renderer, err := vision.NewRenderer("armor-aim", cfg.ShowWindow)
	if err != nil {
		return err
	}
	defer renderer.Close()

	assigner, err := app.NewAssigner(cfg.Assigner, cfg.Params.Matcher)
	if err != nil {
		return err
	}
	recorder := metrics.NewRecorder()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Собираем сервисы приложения
	appContainer, err := container.New(
		storage.NewMemoryOperatorRepository(),
		app.AimDeps{
			Source:     source,
			Detector:   vision.NewSegmentor(cfg.Params.Detector),
			Matcher:    app.NewArmorMatcher(cfg.Params.Matcher, assigner),
			Pose:       solver,
			Classifier: classifier,
			Renderer:   renderer,
			Observer:   recorder,
			Logger:     lg,
		},
		cfg.EnemyColor,
		renderer,
	)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr, lg); err != nil {
				lg.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	// Бот необязателен: без токена наведение работает автономно
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, lg)
		if err != nil {
			lg.Warn("telegram bot disabled", zap.Error(err))
		} else {
			appContainer.AimService.SetNotifier(bot)
			go func() {
				if err := bot.Run(ctx); err != nil {
					lg.Error("telegram bot failed", zap.Error(err))
				}
			}()
		}
	}

	stats, err := appContainer.AimService.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	lg.Info("aim finished",
		zap.String("run_id", stats.RunID),
		zap.Int("frames", stats.Frames),
		zap.Int("armors", stats.Armors),
		zap.Int("ranged", stats.Ranged),
	)
	return nil
}
