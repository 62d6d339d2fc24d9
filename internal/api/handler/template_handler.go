package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"forgeline/backend/internal/dto"
	"forgeline/backend/internal/model"
	"forgeline/backend/internal/service"
	pkgerrors "forgeline/backend/pkg/errors"
	"forgeline/backend/pkg/response"
)

// TemplateHandler 模板模块 HTTP 处理器。
// 三种模板共用一套路由，种类来自路径片段 :kind（fractiles/cells/tiers）。
type TemplateHandler struct {
	tmplSvc service.TemplateService
}

// NewTemplateHandler 创建 TemplateHandler
func NewTemplateHandler(tmplSvc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{tmplSvc: tmplSvc}
}

// kindFromPath 解析路径中的模板种类；失败时写入 400 响应
func kindFromPath(c *gin.Context) (model.TemplateKind, bool) {
	kind, err := model.ParseTemplateKind(c.Param("kind"))
	if err != nil {
		response.BadRequest(c, 10001, "未知的模板种类")
		return 0, false
	}
	return kind, true
}

// ListTemplates 获取模板列表
// GET /api/v1/templates/:kind
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	kind, ok := kindFromPath(c)
	if !ok {
		return
	}

	var req dto.TemplateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	templates, err := h.tmplSvc.List(c.Request.Context(), kind, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, templates)
}

// GetTemplate 获取模板详情
// GET /api/v1/templates/:kind/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	kind, ok := kindFromPath(c)
	if !ok {
		return
	}

	tmpl, err := h.tmplSvc.GetByID(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, tmpl)
}

// CreateTemplate 创建单个模板
// POST /api/v1/templates/:kind
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	principal, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	kind, ok := kindFromPath(c)
	if !ok {
		return
	}

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tmpl, err := h.tmplSvc.Create(c.Request.Context(), principal, kind, &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.Created(c, tmpl)
}

// UpdateTemplate 更新模板
// PUT /api/v1/templates/:kind/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	kind, ok := kindFromPath(c)
	if !ok {
		return
	}

	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tmpl, err := h.tmplSvc.Update(c.Request.Context(), kind, c.Param("id"), &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, tmpl)
}

// DeleteTemplate 删除模板（硬删除，级联删除子层）
// DELETE /api/v1/templates/:kind/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	kind, ok := kindFromPath(c)
	if !ok {
		return
	}

	if err := h.tmplSvc.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateHierarchy 一次请求创建分型及其嵌套单元/层级（全有或全无）
// POST /api/v1/templates/hierarchy
func (h *TemplateHandler) CreateHierarchy(c *gin.Context) {
	principal, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateHierarchyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tmplSvc.CreateHierarchy(c.Request.Context(), principal, &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.Created(c, result)
}

// GetTierHierarchy 按层级模板解析完整祖先链
// GET /api/v1/templates/tiers/:id/hierarchy
func (h *TemplateHandler) GetTierHierarchy(c *gin.Context) {
	chain, err := h.tmplSvc.ResolveTierChain(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, chain)
}

// handleTemplateError 统一处理模板模块业务错误
func (h *TemplateHandler) handleTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 14001, "模板不存在")
	case errors.Is(err, pkgerrors.ErrFractileNameTaken):
		response.Conflict(c, 14002, "同名分型模板已存在")
	case errors.Is(err, pkgerrors.ErrCellNameTaken):
		response.Conflict(c, 14003, "该分型下已存在同名单元模板")
	case errors.Is(err, pkgerrors.ErrTierNameTaken):
		response.Conflict(c, 14004, "该单元下已存在同名层级模板")
	case errors.Is(err, service.ErrParentRequired):
		response.BadRequest(c, 14005, "必须指定父级模板")
	case errors.Is(err, service.ErrParentNotFound):
		response.NotFound(c, 14006, "父级模板不存在")
	case errors.Is(err, service.ErrTierHierarchyBroken):
		response.Conflict(c, 14007, "层级祖先链已断裂")
	case errors.Is(err, service.ErrNameRequired):
		response.BadRequest(c, 14008, "模板名称不能为空")
	case errors.Is(err, service.ErrNoFields):
		response.BadRequest(c, 14009, "未提供任何更新字段")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/template_handler.go
