package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"forgeline/backend/internal/model"
	"forgeline/backend/internal/repository"
	pkgerrors "forgeline/backend/pkg/errors"
)

// ── Mock UnitRepository ──

type mockUnitRepo struct {
	units map[string]*model.Unit
}

func newMockUnitRepo() *mockUnitRepo {
	return &mockUnitRepo{units: make(map[string]*model.Unit)}
}

func (m *mockUnitRepo) Create(_ context.Context, unit *model.Unit) error {
	for _, u := range m.units {
		if u.Code == unit.Code {
			return pkgerrors.ErrUnitCodeTaken
		}
	}
	if unit.UnitID == "" {
		unit.UnitID = "unit-" + unit.Code
	}
	if unit.Version == 0 {
		unit.Version = 1
	}
	m.units[unit.UnitID] = unit
	return nil
}

// GetByID 返回副本，避免调用方的修改直接写穿到存储
func (m *mockUnitRepo) GetByID(_ context.Context, id string) (*model.Unit, error) {
	if u, ok := m.units[id]; ok {
		row := *u
		return &row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUnitRepo) GetByCode(_ context.Context, code string) (*model.Unit, error) {
	for _, u := range m.units {
		if u.Code == code {
			row := *u
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUnitRepo) List(_ context.Context, _, _ int) ([]model.Unit, int64, error) {
	var result []model.Unit
	for _, u := range m.units {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUnitRepo) Update(_ context.Context, unit *model.Unit) error {
	existing, ok := m.units[unit.UnitID]
	if !ok || existing.Version != unit.Version {
		return pkgerrors.ErrOptimisticLock
	}
	unit.Version++
	row := *unit
	m.units[unit.UnitID] = &row
	return nil
}

func (m *mockUnitRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.units[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.units, id)
	return nil
}

func (m *mockUnitRepo) CountProducts(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	units *mockUnitRepo
}

func newMockUserRepo(units *mockUnitRepo) *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), units: units}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return pkgerrors.ErrEmailTaken
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

// load 返回副本并组装 Unit 关联，模拟 Preload
func (m *mockUserRepo) load(u *model.User) *model.User {
	row := *u
	if m.units != nil && u.UnitID != nil {
		if unit, ok := m.units.units[*u.UnitID]; ok {
			unitCopy := *unit
			row.Unit = &unitCopy
		}
	}
	return &row
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return m.load(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return m.load(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, unitID, role string, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if unitID != "" && (u.UnitID == nil || *u.UnitID != unitID) {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *m.load(u))
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	existing, ok := m.users[user.UserID]
	if !ok || existing.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	row := *user
	row.Unit = nil
	m.users[user.UserID] = &row
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, userID, passwordHash, _ string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock TemplateRepository ──

// mockTemplateRepo 按种类分三张表模拟，并复刻作用域唯一约束语义
type mockTemplateRepo struct {
	fractiles map[string]*model.FractileTemplate
	cells     map[string]*model.CellTemplate
	tiers     map[string]*model.TierTemplate
	seq       int
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{
		fractiles: make(map[string]*model.FractileTemplate),
		cells:     make(map[string]*model.CellTemplate),
		tiers:     make(map[string]*model.TierTemplate),
	}
}

func (m *mockTemplateRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *mockTemplateRepo) List(_ context.Context, kind model.TemplateKind, parentID string) ([]model.TemplateNode, error) {
	var nodes []model.TemplateNode
	switch kind {
	case model.KindFractile:
		for _, f := range m.fractiles {
			nodes = append(nodes, model.TemplateNode{ID: f.FractileID, Name: f.Name, Description: f.Description, CreatedAt: f.CreatedAt})
		}
	case model.KindCell:
		for _, c := range m.cells {
			if parentID != "" && c.FractileID != parentID {
				continue
			}
			parent := c.FractileID
			nodes = append(nodes, model.TemplateNode{ID: c.CellID, ParentID: &parent, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt})
		}
	default:
		for _, t := range m.tiers {
			if parentID != "" && t.CellID != parentID {
				continue
			}
			parent := t.CellID
			nodes = append(nodes, model.TemplateNode{ID: t.TierID, ParentID: &parent, Name: t.Name, Description: t.Description, CreatedAt: t.CreatedAt})
		}
	}
	return nodes, nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, kind model.TemplateKind, id string) (*model.TemplateNode, error) {
	switch kind {
	case model.KindFractile:
		if f, ok := m.fractiles[id]; ok {
			return &model.TemplateNode{ID: f.FractileID, Name: f.Name, Description: f.Description, CreatedAt: f.CreatedAt}, nil
		}
	case model.KindCell:
		if c, ok := m.cells[id]; ok {
			parent := c.FractileID
			return &model.TemplateNode{ID: c.CellID, ParentID: &parent, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}, nil
		}
	default:
		if t, ok := m.tiers[id]; ok {
			parent := t.CellID
			return &model.TemplateNode{ID: t.TierID, ParentID: &parent, Name: t.Name, Description: t.Description, CreatedAt: t.CreatedAt}, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTemplateRepo) ParentExists(_ context.Context, kind model.TemplateKind, parentID string) (bool, error) {
	switch kind {
	case model.KindCell:
		_, ok := m.fractiles[parentID]
		return ok, nil
	case model.KindTier:
		_, ok := m.cells[parentID]
		return ok, nil
	}
	return true, nil
}

func (m *mockTemplateRepo) fractileNameTaken(name string) bool {
	for _, f := range m.fractiles {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (m *mockTemplateRepo) cellNameTaken(fractileID, name string) bool {
	for _, c := range m.cells {
		if c.FractileID == fractileID && c.Name == name {
			return true
		}
	}
	return false
}

func (m *mockTemplateRepo) tierNameTaken(cellID, name string) bool {
	for _, t := range m.tiers {
		if t.CellID == cellID && t.Name == name {
			return true
		}
	}
	return false
}

func (m *mockTemplateRepo) Create(_ context.Context, kind model.TemplateKind, node *model.TemplateNode) error {
	now := time.Now()
	switch kind {
	case model.KindFractile:
		if m.fractileNameTaken(node.Name) {
			return pkgerrors.ErrFractileNameTaken
		}
		id := m.nextID("ft")
		m.fractiles[id] = &model.FractileTemplate{FractileID: id, Name: node.Name, Description: node.Description, CreatedBy: node.CreatedBy, CreatedAt: now}
		node.ID = id
	case model.KindCell:
		if m.cellNameTaken(*node.ParentID, node.Name) {
			return pkgerrors.ErrCellNameTaken
		}
		id := m.nextID("ct")
		m.cells[id] = &model.CellTemplate{CellID: id, FractileID: *node.ParentID, Name: node.Name, Description: node.Description, CreatedBy: node.CreatedBy, CreatedAt: now}
		node.ID = id
	default:
		if m.tierNameTaken(*node.ParentID, node.Name) {
			return pkgerrors.ErrTierNameTaken
		}
		id := m.nextID("tt")
		m.tiers[id] = &model.TierTemplate{TierID: id, CellID: *node.ParentID, Name: node.Name, Description: node.Description, CreatedBy: node.CreatedBy, CreatedAt: now}
		node.ID = id
	}
	node.CreatedAt = now
	return nil
}

func (m *mockTemplateRepo) Update(_ context.Context, kind model.TemplateKind, id string, updates map[string]interface{}) error {
	apply := func(name, desc *string) {
		if v, ok := updates["name"].(string); ok {
			*name = v
		}
		if v, ok := updates["description"].(string); ok {
			*desc = v
		}
	}
	switch kind {
	case model.KindFractile:
		f, ok := m.fractiles[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		apply(&f.Name, &f.Description)
	case model.KindCell:
		c, ok := m.cells[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		apply(&c.Name, &c.Description)
	default:
		t, ok := m.tiers[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		apply(&t.Name, &t.Description)
	}
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, kind model.TemplateKind, id string) error {
	switch kind {
	case model.KindFractile:
		if _, ok := m.fractiles[id]; !ok {
			return gorm.ErrRecordNotFound
		}
		delete(m.fractiles, id)
		// 级联
		for cid, c := range m.cells {
			if c.FractileID == id {
				for tid, t := range m.tiers {
					if t.CellID == cid {
						delete(m.tiers, tid)
					}
				}
				delete(m.cells, cid)
			}
		}
	case model.KindCell:
		if _, ok := m.cells[id]; !ok {
			return gorm.ErrRecordNotFound
		}
		delete(m.cells, id)
		for tid, t := range m.tiers {
			if t.CellID == id {
				delete(m.tiers, tid)
			}
		}
	default:
		if _, ok := m.tiers[id]; !ok {
			return gorm.ErrRecordNotFound
		}
		delete(m.tiers, id)
	}
	return nil
}

// CreateHierarchy 全有或全无：先校验整棵树再落库
func (m *mockTemplateRepo) CreateHierarchy(_ context.Context, fractile *model.FractileTemplate) error {
	if m.fractileNameTaken(fractile.Name) {
		return pkgerrors.ErrFractileNameTaken
	}
	cellNames := make(map[string]bool)
	for i := range fractile.Cells {
		cell := &fractile.Cells[i]
		if cellNames[cell.Name] {
			return pkgerrors.ErrCellNameTaken
		}
		cellNames[cell.Name] = true
		tierNames := make(map[string]bool)
		for j := range cell.Tiers {
			if tierNames[cell.Tiers[j].Name] {
				return pkgerrors.ErrTierNameTaken
			}
			tierNames[cell.Tiers[j].Name] = true
		}
	}

	now := time.Now()
	fractile.FractileID = m.nextID("ft")
	fractile.CreatedAt = now
	m.fractiles[fractile.FractileID] = &model.FractileTemplate{
		FractileID: fractile.FractileID, Name: fractile.Name,
		Description: fractile.Description, CreatedBy: fractile.CreatedBy, CreatedAt: now,
	}
	for i := range fractile.Cells {
		cell := &fractile.Cells[i]
		cell.CellID = m.nextID("ct")
		cell.FractileID = fractile.FractileID
		cell.CreatedAt = now
		m.cells[cell.CellID] = &model.CellTemplate{
			CellID: cell.CellID, FractileID: fractile.FractileID,
			Name: cell.Name, Description: cell.Description, CreatedBy: cell.CreatedBy, CreatedAt: now,
		}
		for j := range cell.Tiers {
			tier := &cell.Tiers[j]
			tier.TierID = m.nextID("tt")
			tier.CellID = cell.CellID
			tier.CreatedAt = now
			m.tiers[tier.TierID] = &model.TierTemplate{
				TierID: tier.TierID, CellID: cell.CellID,
				Name: tier.Name, Description: tier.Description, CreatedBy: tier.CreatedBy, CreatedAt: now,
			}
		}
	}
	return nil
}

func (m *mockTemplateRepo) ResolveTierChain(_ context.Context, tierID string) (*model.TierTemplate, error) {
	t, ok := m.tiers[tierID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	resolved := *t
	if c, ok := m.cells[t.CellID]; ok {
		cellCopy := *c
		if f, ok := m.fractiles[c.FractileID]; ok {
			fCopy := *f
			cellCopy.Fractile = &fCopy
		}
		resolved.Cell = &cellCopy
	}
	return &resolved, nil
}

// ── Mock ProductRepository ──

type mockProductRepo struct {
	products  map[string]*model.Product
	tiers     map[string]*model.ProductTier
	cells     map[string]*model.ProductCell
	fractiles map[string]*model.ProductFractile
	units     *mockUnitRepo
	seq       int
}

func newMockProductRepo(units *mockUnitRepo) *mockProductRepo {
	return &mockProductRepo{
		products:  make(map[string]*model.Product),
		tiers:     make(map[string]*model.ProductTier),
		cells:     make(map[string]*model.ProductCell),
		fractiles: make(map[string]*model.ProductFractile),
		units:     units,
	}
}

func (m *mockProductRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ProductID == "" {
		product.ProductID = m.nextID("prod")
	}
	m.products[product.ProductID] = product
	return nil
}

func (m *mockProductRepo) CreateWithChain(ctx context.Context, product *model.Product, tier *model.ProductTier, cell *model.ProductCell, fractile *model.ProductFractile) error {
	if err := m.Create(ctx, product); err != nil {
		return err
	}
	tier.ProductID = product.ProductID
	if err := m.AddTier(ctx, tier); err != nil {
		return err
	}
	cell.ProductID = product.ProductID
	cell.TierID = &tier.ProductTierID
	if err := m.AddCell(ctx, cell); err != nil {
		return err
	}
	fractile.ProductID = product.ProductID
	fractile.CellID = &cell.ProductCellID
	return m.AddFractile(ctx, fractile)
}

func (m *mockProductRepo) CreateWithComponents(ctx context.Context, product *model.Product, tiers []model.ProductTier, cells []model.ProductCell, fractiles []model.ProductFractile) error {
	if err := m.Create(ctx, product); err != nil {
		return err
	}
	for i := range tiers {
		tiers[i].ProductID = product.ProductID
		row := tiers[i]
		m.AddTier(ctx, &row)
	}
	for i := range cells {
		cells[i].ProductID = product.ProductID
		row := cells[i]
		m.AddCell(ctx, &row)
	}
	for i := range fractiles {
		fractiles[i].ProductID = product.ProductID
		row := fractiles[i]
		m.AddFractile(ctx, &row)
	}
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	// 组装关联，模拟 Preload
	loaded := *p
	loaded.Tiers = nil
	loaded.Cells = nil
	loaded.Fractiles = nil
	for _, t := range m.tiers {
		if t.ProductID == id {
			loaded.Tiers = append(loaded.Tiers, *t)
		}
	}
	for _, c := range m.cells {
		if c.ProductID == id {
			loaded.Cells = append(loaded.Cells, *c)
		}
	}
	for _, f := range m.fractiles {
		if f.ProductID == id {
			loaded.Fractiles = append(loaded.Fractiles, *f)
		}
	}
	if m.units != nil {
		if u, ok := m.units.units[p.UnitID]; ok {
			loaded.Unit = u
		}
	}
	return &loaded, nil
}

func (m *mockProductRepo) List(ctx context.Context, unitID, productType, keyword string, _, _ int) ([]model.Product, int64, error) {
	var result []model.Product
	for id, p := range m.products {
		if unitID != "" && p.UnitID != unitID {
			continue
		}
		if productType != "" && p.Type != productType {
			continue
		}
		if keyword != "" && !strings.Contains(p.Name, keyword) {
			continue
		}
		loaded, _ := m.GetByID(ctx, id)
		result = append(result, *loaded)
	}
	return result, int64(len(result)), nil
}

func (m *mockProductRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	p, ok := m.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["type"].(string); ok {
		p.Type = v
	}
	if v, ok := updates["description"].(string); ok {
		p.Description = v
	}
	if v, ok := updates["specifications"].(string); ok {
		p.Specifications = v
	}
	return nil
}

func (m *mockProductRepo) ReplaceComponents(ctx context.Context, productID string, tiers []model.ProductTier, cells []model.ProductCell, fractiles []model.ProductFractile) error {
	if tiers != nil {
		for id, t := range m.tiers {
			if t.ProductID == productID {
				delete(m.tiers, id)
			}
		}
		for i := range tiers {
			tiers[i].ProductID = productID
			row := tiers[i]
			m.AddTier(ctx, &row)
		}
	}
	if cells != nil {
		for id, c := range m.cells {
			if c.ProductID == productID {
				delete(m.cells, id)
			}
		}
		for i := range cells {
			cells[i].ProductID = productID
			row := cells[i]
			m.AddCell(ctx, &row)
		}
	}
	if fractiles != nil {
		for id, f := range m.fractiles {
			if f.ProductID == productID {
				delete(m.fractiles, id)
			}
		}
		for i := range fractiles {
			fractiles[i].ProductID = productID
			row := fractiles[i]
			m.AddFractile(ctx, &row)
		}
	}
	return nil
}

func (m *mockProductRepo) AddTier(_ context.Context, tier *model.ProductTier) error {
	if tier.ProductTierID == "" {
		tier.ProductTierID = m.nextID("pt")
	}
	m.tiers[tier.ProductTierID] = tier
	return nil
}

func (m *mockProductRepo) AddCell(_ context.Context, cell *model.ProductCell) error {
	if cell.ProductCellID == "" {
		cell.ProductCellID = m.nextID("pc")
	}
	m.cells[cell.ProductCellID] = cell
	return nil
}

func (m *mockProductRepo) AddFractile(_ context.Context, fractile *model.ProductFractile) error {
	if fractile.ProductFractileID == "" {
		fractile.ProductFractileID = m.nextID("pf")
	}
	m.fractiles[fractile.ProductFractileID] = fractile
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.products, id)
	for tid, t := range m.tiers {
		if t.ProductID == id {
			delete(m.tiers, tid)
		}
	}
	for cid, c := range m.cells {
		if c.ProductID == id {
			delete(m.cells, cid)
		}
	}
	for fid, f := range m.fractiles {
		if f.ProductID == id {
			delete(m.fractiles, fid)
		}
	}
	return nil
}

func (m *mockProductRepo) ResolveInstanceChain(_ context.Context, productTierID string) (*model.InstanceChain, error) {
	t, ok := m.tiers[productTierID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	chain := &model.InstanceChain{Tier: t}
	for _, c := range m.cells {
		if c.TierID != nil && *c.TierID == productTierID {
			chain.Cell = c
			break
		}
	}
	if chain.Cell != nil {
		for _, f := range m.fractiles {
			if f.CellID != nil && *f.CellID == chain.Cell.ProductCellID {
				chain.Fractile = f
				break
			}
		}
	}
	return chain, nil
}

// ── Mock BatchRepository ──

type mockBatchRepo struct {
	batches  map[string]*model.Batch
	products *mockProductRepo
	units    *mockUnitRepo
	seq      int
}

func newMockBatchRepo(products *mockProductRepo, units *mockUnitRepo) *mockBatchRepo {
	return &mockBatchRepo{
		batches:  make(map[string]*model.Batch),
		products: products,
		units:    units,
	}
}

func (m *mockBatchRepo) load(b *model.Batch) model.Batch {
	loaded := *b
	if m.products != nil {
		if p, ok := m.products.products[b.ProductID]; ok {
			loaded.Product = p
		}
	}
	if m.units != nil {
		if u, ok := m.units.units[b.UnitID]; ok {
			loaded.Unit = u
		}
	}
	return loaded
}

func (m *mockBatchRepo) GetByID(_ context.Context, id string) (*model.Batch, error) {
	b, ok := m.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := m.load(b)
	return &loaded, nil
}

func (m *mockBatchRepo) matches(b *model.Batch, filter repository.BatchFilter) bool {
	if filter.UnitID != "" && b.UnitID != filter.UnitID {
		return false
	}
	if filter.ProductID != "" && b.ProductID != filter.ProductID {
		return false
	}
	if filter.Shift != "" && b.Shift != filter.Shift {
		return false
	}
	if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	if filter.DateFrom != nil && b.BatchDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && b.BatchDate.After(*filter.DateTo) {
		return false
	}
	return true
}

func (m *mockBatchRepo) List(_ context.Context, filter repository.BatchFilter, _, _ int) ([]model.Batch, int64, error) {
	var result []model.Batch
	for _, b := range m.batches {
		if m.matches(b, filter) {
			result = append(result, m.load(b))
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockBatchRepo) ListForExport(ctx context.Context, filter repository.BatchFilter) ([]model.Batch, error) {
	result, _, err := m.List(ctx, filter, 0, 0)
	return result, err
}

func (m *mockBatchRepo) MaxBatchInShift(_ context.Context, productID string, shift model.Shift, date time.Time) (int, error) {
	max := 0
	for _, b := range m.batches {
		if b.ProductID == productID && b.Shift == shift && sameDate(b.BatchDate, date) && b.BatchInShift > max {
			max = b.BatchInShift
		}
	}
	return max, nil
}

func (m *mockBatchRepo) UsedSlots(_ context.Context, productID string, shift model.Shift, date time.Time) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	for _, b := range m.batches {
		if b.ProductID == productID && b.Shift == shift && sameDate(b.BatchDate, date) {
			slots = append(slots, model.TimeSlot{StartTime: b.StartTime, EndTime: b.EndTime})
		}
	}
	return slots, nil
}

func (m *mockBatchRepo) CreateAllocated(ctx context.Context, batch *model.Batch) error {
	if batch.BatchInShift == 0 {
		max, _ := m.MaxBatchInShift(ctx, batch.ProductID, batch.Shift, batch.BatchDate)
		batch.BatchInShift = max + 1
	}
	for _, b := range m.batches {
		if b.ProductID != batch.ProductID || b.Shift != batch.Shift || !sameDate(b.BatchDate, batch.BatchDate) {
			continue
		}
		if b.StartTime == batch.StartTime && b.EndTime == batch.EndTime {
			return pkgerrors.ErrBatchSlotTaken
		}
		if b.BatchInShift == batch.BatchInShift {
			return pkgerrors.ErrBatchSequenceTaken
		}
	}
	m.seq++
	batch.BatchID = fmt.Sprintf("batch-%d", m.seq)
	batch.CreatedAt = time.Now()
	m.batches[batch.BatchID] = batch
	return nil
}

func (m *mockBatchRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	b, ok := m.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["quantity_produced"].(int); ok {
		b.QuantityProduced = v
	}
	if v, ok := updates["start_time"].(string); ok {
		b.StartTime = v
	}
	if v, ok := updates["end_time"].(string); ok {
		b.EndTime = v
	}
	if v, ok := updates["status"].(string); ok {
		b.Status = v
	}
	if v, ok := updates["notes"].(string); ok {
		b.Notes = v
	}
	if v, ok := updates["had_delay"].(bool); ok {
		b.HadDelay = v
	}
	if v, ok := updates["delay_reason"].(string); ok {
		b.DelayReason = v
	}
	return nil
}

func (m *mockBatchRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.batches[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.batches, id)
	return nil
}

func (m *mockBatchRepo) Statistics(_ context.Context, filter repository.BatchFilter) (*model.BatchStatistics, error) {
	stats := &model.BatchStatistics{}
	products := make(map[string]bool)
	for _, b := range m.batches {
		if !m.matches(b, filter) {
			continue
		}
		stats.TotalBatches++
		stats.TotalQuantity += int64(b.QuantityProduced)
		products[b.ProductID] = true
	}
	stats.UniqueProducts = int64(len(products))
	if stats.TotalBatches > 0 {
		stats.AvgQuantity = float64(stats.TotalQuantity) / float64(stats.TotalBatches)
	}
	return stats, nil
}

func (m *mockBatchRepo) ShiftBreakdown(_ context.Context, filter repository.BatchFilter) ([]model.ShiftCount, error) {
	byShift := make(map[model.Shift]*model.ShiftCount)
	for _, b := range m.batches {
		if !m.matches(b, filter) {
			continue
		}
		sc, ok := byShift[b.Shift]
		if !ok {
			sc = &model.ShiftCount{Shift: b.Shift}
			byShift[b.Shift] = sc
		}
		sc.TotalBatches++
		sc.TotalQuantity += int64(b.QuantityProduced)
	}

	var result []model.ShiftCount
	for _, shift := range model.ShiftOrder {
		if sc, ok := byShift[shift]; ok {
			result = append(result, *sc)
		}
	}
	return result, nil
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// [自证通过] internal/service/mock_repos_test.go
