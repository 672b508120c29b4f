package repository

import (
	"context"

	"smartinventory/internal/domain/model"
)

// トランザクション内で在庫を動かすための約束
type InventoryRepository interface {
	// 行ロックを取って現在値を読む（対応していないDBでは普通の読み取り）
	LockProduct(ctx context.Context, productID string) (model.Product, error)

	// 在庫を delta だけ増減（下限チェックはしない）
	AddStock(ctx context.Context, productID string, delta int64) error
}

// 入出庫履歴（追記のみ）
type MovementLogRepository interface {
	Create(ctx context.Context, log model.MovementLog) (model.MovementLog, error)

	// 新しい順（log_id DESC）
	List(ctx context.Context) ([]model.MovementLog, error)
}

// 在庫台帳：商品テーブル + 入出庫ログ。
// ApplyMovement は在庫更新とログ追加を1トランザクションで行う。
type LedgerRepository interface {
	InitSchema(ctx context.Context) error

	GetProduct(ctx context.Context, id string) (model.Product, error)
	GetProductByName(ctx context.Context, name string) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpsertProduct(ctx context.Context, p model.Product) (model.Product, error)
	// 全件を1トランザクションで登録（1件でも失敗したら何も残さない）
	UpsertProducts(ctx context.Context, products []model.Product) error

	ListLogs(ctx context.Context) ([]model.MovementLog, error)
	ApplyMovement(ctx context.Context, productID string, dir model.Direction) (model.MovementLog, error)
}
