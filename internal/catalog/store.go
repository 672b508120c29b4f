// Package catalog は感情ごとのおすすめ商品カタログ（読み取り専用）。
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"smartinventory/internal/domain/model"

	"gopkg.in/yaml.v3"
)

type Store struct {
	items []model.CatalogItem
}

func New(items []model.CatalogItem) *Store {
	cp := make([]model.CatalogItem, len(items))
	copy(cp, items)
	return &Store{items: cp}
}

// Load は拡張子（.json / .yaml / .yml）で形式を選んで読み込む。
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var items []model.CatalogItem
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	case ".json", "":
		err = json.Unmarshal(data, &items)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	return New(items), nil
}

// ByEmotion は感情が一致する（大文字小文字は無視）商品をカタログ順で返す。
func (s *Store) ByEmotion(emotion string) []model.CatalogItem {
	emotion = strings.TrimSpace(emotion)
	out := make([]model.CatalogItem, 0)
	for _, it := range s.items {
		if strings.EqualFold(it.Emotion, emotion) {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) Len() int { return len(s.items) }
