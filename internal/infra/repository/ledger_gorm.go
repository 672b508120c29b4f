package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"smartinventory/internal/domain/model"
	repo "smartinventory/internal/repository"

	"gorm.io/gorm"
)

// LedgerGormStore は products と logs をまとめた在庫台帳。
// 業務ルールは持たない（下限チェックなどは usecase 側の判断）。
type LedgerGormStore struct {
	db       *gorm.DB
	tx       repo.TransactionManager
	products repo.ProductRepository
	logs     repo.MovementLogRepository
	clock    repo.Clock
	locks    *keyedMutex
}

func NewLedgerGormStore(db *gorm.DB, clock repo.Clock) *LedgerGormStore {
	return &LedgerGormStore{
		db:       db,
		tx:       NewTxManagerGorm(db),
		products: NewProductGormRepository(db),
		logs:     NewMovementLogGormRepository(db),
		clock:    clock,
		locks:    newKeyedMutex(),
	}
}

var _ repo.LedgerRepository = (*LedgerGormStore)(nil)

// テーブルが無ければ作る。何度呼んでもよい。
// 古い products テーブルに threshold が無い場合は 0 で追加される。
func (s *LedgerGormStore) InitSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.Product{}, &model.MovementLog{}); err != nil {
		return repo.NewStorageError("init schema", err)
	}
	return nil
}

func (s *LedgerGormStore) GetProduct(ctx context.Context, id string) (model.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *LedgerGormStore) GetProductByName(ctx context.Context, name string) (model.Product, error) {
	return s.products.FindByName(ctx, name)
}

func (s *LedgerGormStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx)
}

func (s *LedgerGormStore) UpsertProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return model.Product{}, fmt.Errorf("product id is required")
	}
	unlock := s.locks.Lock(p.ID)
	defer unlock()

	return s.products.Upsert(ctx, p)
}

func (s *LedgerGormStore) UpsertProducts(ctx context.Context, products []model.Product) error {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("product id is required")
		}
		ids = append(ids, p.ID)
	}

	//ロックは ID 順に取る
	sort.Strings(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		unlock := s.locks.Lock(id)
		defer unlock()
	}

	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, p := range products {
			if _, err := r.Products().Upsert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return classify("upsert products", err)
	}
	return nil
}

func (s *LedgerGormStore) ListLogs(ctx context.Context) ([]model.MovementLog, error) {
	return s.logs.List(ctx)
}

// 在庫を±1し、ログを1行追加する。両方成功した時だけcommit。
func (s *LedgerGormStore) ApplyMovement(ctx context.Context, productID string, dir model.Direction) (model.MovementLog, error) {
	if !dir.Valid() {
		return model.MovementLog{}, fmt.Errorf("invalid direction %q", dir)
	}

	//同じ商品への更新は直列にする
	unlock := s.locks.Lock(productID)
	defer unlock()

	var entry model.MovementLog
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//存在チェック（postgresでは行ロック）
		if _, err := r.Inventory().LockProduct(ctx, productID); err != nil {
			return err
		}

		if err := r.Inventory().AddStock(ctx, productID, dir.Delta()); err != nil {
			return err
		}

		created, err := r.Logs().Create(ctx, model.NewMovementLog(productID, dir, s.clock.Now()))
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return model.MovementLog{}, classify("apply movement", err)
	}
	return entry, nil
}

// ErrNotFound / StorageError はそのまま、それ以外（commit失敗など）は StorageError に包む
func classify(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) || repo.IsStorageError(err) {
		return err
	}
	return repo.NewStorageError(op, err)
}
