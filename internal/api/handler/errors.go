package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/lauracabezas-star/aulatech-backend/pkg/errors"
	"github.com/lauracabezas-star/aulatech-backend/pkg/response"
)

// codeBindFailed 请求体 / 查询参数绑定失败
const codeBindFailed = 10001

// kindStatus 错误类别 → HTTP 状态码
var kindStatus = map[error]int{
	pkgerrors.ErrValidation:      http.StatusBadRequest,
	pkgerrors.ErrInvalidState:    http.StatusBadRequest,
	pkgerrors.ErrUnauthenticated: http.StatusUnauthorized,
	pkgerrors.ErrForbidden:       http.StatusForbidden,
	pkgerrors.ErrNotFound:        http.StatusNotFound,
	pkgerrors.ErrConflict:        http.StatusConflict,
	pkgerrors.ErrTransient:       http.StatusServiceUnavailable,
}

// writeError 统一将业务错误翻译为 HTTP 响应
// 未归类的错误一律返回 500，开发模式下附带底层原因
func writeError(c *gin.Context, err error, dev bool) {
	_ = c.Error(err)

	var appErr *pkgerrors.AppError
	status, known := kindStatus[pkgerrors.KindOf(err)]
	if !known || !errors.As(err, &appErr) {
		if dev {
			response.ErrorWithDetails(c, http.StatusInternalServerError, 50000, "服务器内部错误", err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	if dev && appErr.Cause() != nil {
		response.ErrorWithDetails(c, status, appErr.Code, appErr.Message, appErr.Cause().Error())
		return
	}
	response.Error(c, status, appErr.Code, appErr.Message)
}

// bindFailed 参数绑定失败，逐字段返回校验信息
func bindFailed(c *gin.Context, err error) {
	response.ValidationFailed(c, codeBindFailed, "参数校验失败", err)
}

// [自证通过] internal/api/handler/errors.go
