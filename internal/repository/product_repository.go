package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartinventory/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 保存先のI/Oやトランザクションの失敗。
// 呼び出し側は errors.As で判定する。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// 現在の時刻
type Clock interface {
	Now() time.Time
}

// 商品の永続化（取得・登録）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (model.Product, error)
	// 名前の完全一致（大文字小文字は区別しない）
	FindByName(ctx context.Context, name string) (model.Product, error)
	// product_id 順
	List(ctx context.Context) ([]model.Product, error)
	Upsert(ctx context.Context, p model.Product) (model.Product, error)
}
