package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response 统一响应结构
// 成功：{code:0, message, data}；失败：{code, message, error, errors?, details?}
type Response struct {
	Code    int          `json:"code"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details string       `json:"details,omitempty"`
}

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// OKMessage 200 成功响应并附带提示语
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:  code,
		Error: message,
	})
}

// ErrorWithDetails 带详情的错误响应（仅开发模式使用）
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Error:   message,
		Details: details,
	})
}

// ValidationFailed 400 参数校验失败
// 若 err 为 validator.ValidationErrors，逐字段展开；否则仅返回 message
func ValidationFailed(c *gin.Context, code int, message string, err error) {
	resp := Response{Code: code, Error: message}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Errors = make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			resp.Errors = append(resp.Errors, FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
	}

	c.JSON(http.StatusBadRequest, resp)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段为必填项"
	case "notblank":
		return "不能为空白"
	case "email":
		return "邮箱格式不正确"
	case "min":
		return "长度或数值不能小于 " + fe.Param()
	case "max":
		return "长度或数值不能大于 " + fe.Param()
	case "oneof":
		return "取值必须为以下之一: " + fe.Param()
	case "uuid":
		return "必须为合法的 UUID"
	case "url":
		return "必须为合法的 URL"
	case "gtfield":
		return "必须晚于 " + fe.Param()
	default:
		return "校验未通过: " + fe.Tag()
	}
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}

// [自证通过] pkg/response/response.go
