package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ── 错误类别 ──
// 业务错误均归属于以下某一类别，Handler 层只依据类别决定 HTTP 状态码。

var (
	ErrValidation      = errors.New("参数校验失败")
	ErrUnauthenticated = errors.New("未认证")
	ErrForbidden       = errors.New("无权限访问")
	ErrNotFound        = errors.New("资源不存在")
	ErrConflict        = errors.New("资源冲突")
	ErrInvalidState    = errors.New("当前状态不允许该操作")
	ErrTransient       = errors.New("存储暂时不可用，请稍后重试")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(ErrConflict, 10007, "数据已被其他操作修改，请刷新后重试")

// AppError 带类别与业务码的错误
type AppError struct {
	Kind    error
	Code    int
	Message string

	cause error
}

// New 创建业务错误
func New(kind error, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap 同时暴露类别与底层原因，errors.Is 可匹配任意一个
func (e *AppError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// Is 业务码相同即视为同一业务错误（Wrap 产生的副本仍可被原错误匹配）
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Cause 返回底层原因（开发模式下写入响应 details）
func (e *AppError) Cause() error { return e.cause }

// Wrap 复制业务错误并附加底层原因
func (e *AppError) Wrap(cause error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, cause: cause}
}

// KindOf 返回错误所属类别，未归类时返回 nil
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrUnauthenticated, ErrForbidden, ErrNotFound,
		ErrConflict, ErrInvalidState, ErrTransient,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ── PostgreSQL 错误翻译 ──

const (
	pgUniqueViolation      = "23505"
	pgExclusionViolation   = "23P01"
	pgForeignKeyViolation  = "23503"
	pgQueryCanceled        = "57014"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var (
	errDuplicate    = New(ErrConflict, 10006, "数据已存在")
	errOverlap      = New(ErrConflict, 10008, "数据与现有记录冲突")
	errBadReference = New(ErrValidation, 10009, "引用的数据不存在")
	errStoreTimeout = New(ErrTransient, 50300, "存储暂时不可用，请稍后重试")
)

// FromDB 将存储层错误翻译为业务错误类别
// 唯一约束/排他约束冲突 → Conflict，外键 → Validation，超时/取消/序列化失败 → Transient
// 其他错误原样返回（由 Handler 视为 500）
func FromDB(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errDuplicate.Wrap(err)
		case pgExclusionViolation:
			return errOverlap.Wrap(err)
		case pgForeignKeyViolation:
			return errBadReference.Wrap(err)
		case pgQueryCanceled, pgSerializationFailure, pgDeadlockDetected:
			return errStoreTimeout.Wrap(err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return errStoreTimeout.Wrap(err)
	}

	return err
}

// ConstraintName 返回 PostgreSQL 约束名（非约束错误返回空串）
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// [自证通过] pkg/errors/errors.go
