package repository

import (
	"context"
	"errors"

	"smartinventory/internal/domain/model"
	repo "smartinventory/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 行ロックを取って商品を読む。
// SQLiteは FOR UPDATE を持たないので、書き込みTx自体の排他に任せる。
func (r *InventoryGormRepository) LockProduct(ctx context.Context, productID string) (model.Product, error) {
	q := r.db.WithContext(ctx)
	if supportsRowLock(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p model.Product
	err := q.Where("product_id = ?", productID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, repo.NewStorageError("lock product", err)
	}
	return p, nil
}

// 在庫を増減（マイナスになっても止めない）
func (r *InventoryGormRepository) AddStock(ctx context.Context, productID string, delta int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", delta))

	if res.Error != nil {
		return repo.NewStorageError("update stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func supportsRowLock(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
