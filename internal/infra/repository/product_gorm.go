package repository

import (
	"context"
	"errors"
	"strings"

	"smartinventory/internal/domain/model"
	repo "smartinventory/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("product_id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, repo.NewStorageError("find product", err)
	}
	return p, nil
}

// 名前で商品を取得（大文字小文字を区別しない完全一致）
func (r *ProductGormRepository) FindByName(ctx context.Context, name string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Order("product_id asc").
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, repo.NewStorageError("find product by name", err)
	}
	return p, nil
}

// 全商品（product_id順）
func (r *ProductGormRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("product_id asc").Find(&products).Error; err != nil {
		return []model.Product{}, repo.NewStorageError("list products", err)
	}
	return products, nil
}

// 登録 or 更新（product_idが同じなら上書き）
func (r *ProductGormRepository) Upsert(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "stock", "category", "threshold"}),
	}).Create(&p).Error
	if err != nil {
		return model.Product{}, repo.NewStorageError("upsert product", err)
	}
	return p, nil
}
