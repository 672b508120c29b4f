package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DBDriver    string // sqlite / postgres
	SQLitePath  string // sqliteのファイル（inventory.db）
	DatabaseURL string // postgresの接続文字列

	JWTSecret            string // JWT署名シークレット（空なら認証なし）
	OperatorUsername     string
	OperatorPasswordHash string // オペレーターのbcryptハッシュ

	CatalogPath string // おすすめカタログ（json / yaml）

	VisionProvider string // ollama / gemini
	VisionModel    string
	OllamaURL      string
	GeminiAPIKey   string

	FramesDir         string // フレーム画像のディレクトリ（カメラの代わり）
	CameraSnapshotURL string // スナップショットを返すカメラのURL

	KafkaBroker string // 空なら入出庫イベントを送らない
	KafkaTopic  string

	OtelEndpoint   string // 空ならトレースを送らない
	OtelAuthHeader string

	LogLevel string
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		SQLitePath:  getenv("SQLITE_PATH", "inventory.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:            os.Getenv("JWT_SECRET"),
		OperatorUsername:     getenv("OPERATOR_USERNAME", "operator"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),

		CatalogPath: getenv("CATALOG_PATH", "catalog.json"),

		VisionProvider: strings.ToLower(getenv("VISION_PROVIDER", "ollama")),
		VisionModel:    getenv("VISION_MODEL", "llava"),
		OllamaURL:      getenv("OLLAMA_URL", "http://localhost:11434"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),

		FramesDir:         os.Getenv("FRAMES_DIR"),
		CameraSnapshotURL: os.Getenv("CAMERA_SNAPSHOT_URL"),

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getenv("KAFKA_TOPIC", "inventory.movements"),

		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader: os.Getenv("OTEL_AUTH_HEADER"),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	if _, err := strconv.Atoi(strings.TrimPrefix(cfg.Port, ":")); err != nil {
		return Config{}, fmt.Errorf("PORT must be number: %w", err)
	}

	//必須チェック
	switch cfg.DBDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH is required")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required")
		}
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be sqlite or postgres: %q", cfg.DBDriver)
	}

	switch cfg.VisionProvider {
	case "ollama":
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return Config{}, fmt.Errorf("GEMINI_API_KEY is required")
		}
	default:
		return Config{}, fmt.Errorf("VISION_PROVIDER must be ollama or gemini: %q", cfg.VisionProvider)
	}

	//認証を使うならハッシュも必要
	if cfg.JWTSecret != "" && cfg.OperatorPasswordHash == "" {
		return Config{}, fmt.Errorf("OPERATOR_PASSWORD_HASH is required")
	}

	return cfg, nil
}

// Addr は listen 用のアドレス（":8080"）
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// 認証が有効か
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
