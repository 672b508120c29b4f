// Package vision は物体検出・感情判定をマルチモーダルLLM（Gemini / Ollama）で行うアダプタ。
package vision

import (
	"context"
	"fmt"
	"strings"
)

// 画像1枚+プロンプト -> テキスト
type Generator interface {
	Generate(ctx context.Context, prompt string, image []byte) (string, error)
}

// Config はプロバイダの選択
type Config struct {
	Provider     string // "ollama" | "gemini"
	Model        string
	OllamaURL    string
	GeminiAPIKey string
}

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// NewGenerator はプロバイダごとの Generator と後片付け関数を返す。
func NewGenerator(ctx context.Context, cfg Config) (Generator, func() error, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.Model, nil), func() error { return nil }, nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported vision provider: %s", cfg.Provider)
	}
}
