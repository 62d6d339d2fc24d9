package dto

import "encoding/json"

// ComponentInput 组件实例输入（扁平路径，或更新时的整体替换内容）
type ComponentInput struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Count       *int   `json:"count"       binding:"omitempty,min=0"` // 缺省为 0
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// CreateProductRequest 创建产品请求
// 二选一：TierTemplateID 非空时按模板链快照实例化组件；
// 否则按扁平数组直接插入（历史路径，无交叉链接）。
// Specifications 接受 JSON 对象或字符串，存储时统一序列化为文本。
type CreateProductRequest struct {
	Name           string           `json:"name"             binding:"required,max=200"`
	Type           string           `json:"type"             binding:"omitempty,oneof=standard prototype custom"`
	UnitID         string           `json:"unit_id"          binding:"required,uuid"`
	Description    string           `json:"description"      binding:"omitempty,max=2000"`
	Specifications json.RawMessage  `json:"specifications"   binding:"omitempty"`
	TierTemplateID *string          `json:"tier_template_id" binding:"omitempty,uuid"`
	Fractiles      []ComponentInput `json:"fractiles"        binding:"omitempty,dive"`
	Cells          []ComponentInput `json:"cells"            binding:"omitempty,dive"`
	Tiers          []ComponentInput `json:"tiers"            binding:"omitempty,dive"`
}

// UpdateProductRequest 更新产品请求
// 组件三数组为指针：nil 表示不动组件，非 nil（含空数组）触发全量替换
type UpdateProductRequest struct {
	Name           *string           `json:"name"           binding:"omitempty,max=200"`
	Type           *string           `json:"type"           binding:"omitempty,oneof=standard prototype custom"`
	Description    *string           `json:"description"    binding:"omitempty,max=2000"`
	Specifications json.RawMessage   `json:"specifications" binding:"omitempty"`
	Fractiles      *[]ComponentInput `json:"fractiles"      binding:"omitempty,dive"`
	Cells          *[]ComponentInput `json:"cells"          binding:"omitempty,dive"`
	Tiers          *[]ComponentInput `json:"tiers"          binding:"omitempty,dive"`
}

// ProductListRequest 产品列表请求
type ProductListRequest struct {
	PaginationRequest
	UnitID  string `form:"unit_id" binding:"omitempty,uuid"`
	Type    string `form:"type"    binding:"omitempty,oneof=standard prototype custom"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// ComponentResponse 组件实例响应
type ComponentResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Description string  `json:"description,omitempty"`
	TierID      *string `json:"tier_id,omitempty"` // 仅 cell 实例
	CellID      *string `json:"cell_id,omitempty"` // 仅 fractile 实例
	CreatedAt   string  `json:"created_at"`
}

// ProductResponse 产品详情响应
// Specifications 读取时尽力解析为 JSON，失败则原样返回文本
type ProductResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Type           string              `json:"type"`
	UnitID         string              `json:"unit_id"`
	Unit           *UnitBrief          `json:"unit,omitempty"`
	Description    string              `json:"description,omitempty"`
	Specifications interface{}         `json:"specifications,omitempty"`
	Fractiles      []ComponentResponse `json:"fractiles"`
	Cells          []ComponentResponse `json:"cells"`
	Tiers          []ComponentResponse `json:"tiers"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

// InstanceChainResponse 实例维度的层级详情（tier 实例 → 同产品 cell/fractile 实例）
type InstanceChainResponse struct {
	Tier     ComponentResponse  `json:"tier"`
	Cell     *ComponentResponse `json:"cell"`
	Fractile *ComponentResponse `json:"fractile"`
}

// [自证通过] internal/dto/product.go
