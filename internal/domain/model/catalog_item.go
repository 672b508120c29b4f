package model

// おすすめ商品のカタログ（catalog.json の1件）
type CatalogItem struct {
	Emotion  string `json:"emotion" yaml:"emotion"`
	Name     string `json:"name" yaml:"name"`
	Image    string `json:"image" yaml:"image"`
	Link     string `json:"link" yaml:"link"`
	Category string `json:"category" yaml:"category"`
}
