package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求（role 缺省为 student）
type RegisterRequest struct {
	Email     string `json:"email"      binding:"required,email,max=255"`
	Password  string `json:"password"   binding:"required,min=6,max=72"`
	FirstName string `json:"first_name" binding:"required,notblank,max=100"`
	LastName  string `json:"last_name"  binding:"required,notblank,max=100"`
	Role      string `json:"role"       binding:"omitempty,oneof=teacher student technician"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 修改个人信息请求
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,notblank,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,notblank,max=100"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// [自证通过] internal/dto/auth.go
