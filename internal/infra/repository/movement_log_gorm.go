package repository

import (
	"context"

	"smartinventory/internal/domain/model"
	repo "smartinventory/internal/repository"

	"gorm.io/gorm"
)

type movementLogGormRepository struct {
	db *gorm.DB
}

func NewMovementLogGormRepository(db *gorm.DB) repo.MovementLogRepository {
	return &movementLogGormRepository{db: db}
}

func (r *movementLogGormRepository) Create(ctx context.Context, log model.MovementLog) (model.MovementLog, error) {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return model.MovementLog{}, repo.NewStorageError("insert log", err)
	}
	return log, nil
}

func (r *movementLogGormRepository) List(ctx context.Context) ([]model.MovementLog, error) {
	var logs []model.MovementLog

	//新しい順
	if err := r.db.WithContext(ctx).Order("log_id DESC").Find(&logs).Error; err != nil {
		return nil, repo.NewStorageError("list logs", err)
	}
	return logs, nil
}
