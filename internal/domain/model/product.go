package model

// 商品（在庫の現在値を持つ）
type Product struct {
	ID        string `gorm:"column:product_id;type:text;primaryKey" json:"product_id"`
	Name      string `gorm:"column:name;type:text" json:"name"`
	Stock     int64  `gorm:"column:stock;type:integer" json:"stock"`
	Category  string `gorm:"column:category;type:text" json:"category"`
	Threshold int64  `gorm:"column:threshold;type:integer;not null;default:0" json:"threshold"`
}

// 既存のinventory.dbと同じテーブル名
func (Product) TableName() string { return "products" }

// 在庫が発注点以下か（境界を含む）
func (p Product) IsLowStock() bool {
	return p.Stock <= p.Threshold
}
