// Package app は設定から各部品を組み立てる（CLI の各コマンドから使う）。
package app

import (
	"context"
	"fmt"
	"time"

	"smartinventory/internal/catalog"
	"smartinventory/internal/config"
	"smartinventory/internal/handler"
	"smartinventory/internal/infra/db"
	"smartinventory/internal/infra/messaging"
	infraRepo "smartinventory/internal/infra/repository"
	"smartinventory/internal/infra/vision"
	"smartinventory/internal/observability"
	"smartinventory/internal/server"
	"smartinventory/internal/storage"
	"smartinventory/internal/usecase"
	auth "smartinventory/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const accessTokenTTL = 15 * time.Minute

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Container は台帳と在庫サービスまで（全コマンド共通）を持つ。
type Container struct {
	Config    config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Ledger    *infraRepo.LedgerGormStore
	Inventory *usecase.InventoryUsecase

	closers []func(ctx context.Context) error
}

func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	c := &Container{Config: cfg, Logger: logger}

	//トレース（失敗しても続行）
	tp, traceShutdown, err := observability.SetupTracingSDK(ctx, observability.TracingConfig{
		Endpoint:   cfg.OtelEndpoint,
		AuthHeader: cfg.OtelAuthHeader,
	})
	if err != nil {
		logger.Error("Failed to setup OpenTelemetry tracing", zap.Error(err))
		tp = otel.GetTracerProvider()
	} else {
		c.closers = append(c.closers, traceShutdown)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	c.DB = gormDB
	c.closers = append(c.closers, func(context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	c.Ledger = infraRepo.NewLedgerGormStore(gormDB, realClock{})
	if err := c.Ledger.InitSchema(ctx); err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	//入出庫イベント（KAFKA_BROKER があるときだけ）
	var publisher usecase.MovementPublisher
	if cfg.KafkaBroker != "" {
		writer, err := messaging.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaTopic, tp)
		if err != nil {
			c.Shutdown(ctx)
			return nil, err
		}
		kp := messaging.NewKafkaPublisher(writer, logger)
		publisher = kp
		c.closers = append(c.closers, func(context.Context) error { return kp.Close() })
		logger.Info("movement events enabled", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	}

	c.Inventory = usecase.NewInventoryUsecase(c.Ledger, publisher, logger)
	return c, nil
}

// NewServer は HTTP サーバ（カメラ・識別器・カタログ込み）を組み立てる。
func (c *Container) NewServer(ctx context.Context) (*echo.Echo, error) {
	gen, closeGen, err := vision.NewGenerator(ctx, vision.Config{
		Provider:     c.Config.VisionProvider,
		Model:        c.Config.VisionModel,
		OllamaURL:    c.Config.OllamaURL,
		GeminiAPIKey: c.Config.GeminiAPIKey,
	})
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func(context.Context) error { return closeGen() })

	//カタログが読めなくてもおすすめが空になるだけ
	cat, err := catalog.Load(c.Config.CatalogPath)
	if err != nil {
		c.Logger.Warn("catalog not loaded, recommendations will be empty", zap.String("path", c.Config.CatalogPath), zap.Error(err))
		cat = catalog.New(nil)
	}

	opener := vision.NewConfiguredOpener(c.Config.FramesDir, c.Config.CameraSnapshotURL, vision.NewObjectLabeler(gen))
	scanUC := usecase.NewScanUsecase(c.Inventory, opener, c.Logger)
	recommendUC := usecase.NewRecommendUsecase(vision.NewEmotionClassifier(gen), cat, c.Logger)

	sessions := storage.New()
	c.closers = append(c.closers, func(context.Context) error {
		//残っているセッションのカメラを解放
		for _, id := range sessions.IDs() {
			_, _ = sessions.Remove(id, func(s usecase.ScanSession) (usecase.ScanSession, error) {
				return scanUC.Stop(s)
			})
		}
		return nil
	})

	h := server.Handlers{
		Products:  handler.NewProductHandler(c.Inventory),
		Logs:      handler.NewLogHandler(c.Inventory),
		Scan:      handler.NewScanHandler(scanUC, sessions),
		Recommend: handler.NewRecommendHandler(recommendUC),
	}
	if c.Config.AuthEnabled() {
		loginUC := auth.NewLoginUsecase(
			c.Config.OperatorUsername,
			c.Config.OperatorPasswordHash,
			auth.NewBcryptPasswordVerifier(),
			auth.NewJWTIssuer(c.Config.JWTSecret, accessTokenTTL),
			realClock{},
		)
		h.Auth = handler.NewAuthHandler(loginUC)
	} else {
		c.Logger.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	return server.New(h, c.Config.JWTSecret, c.Logger), nil
}

// Shutdown は作った順の逆に閉じる。
func (c *Container) Shutdown(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			c.Logger.Error("shutdown step failed", zap.Error(err))
		}
	}
	c.closers = nil
	_ = c.Logger.Sync()
}
