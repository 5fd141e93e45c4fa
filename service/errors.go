package service

import (
	"errors"
	"fmt"

	"mybudget/models"
	"mybudget/store"
)

// 错误类别，接口层据此映射 HTTP 状态码
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrCategoryInUse 类别仍被消费记录引用
var ErrCategoryInUse = &Error{Kind: ErrConflict, Message: "该类别下仍有消费记录，无法删除"}

// Error 带中文提示的业务错误，errors.Is 可匹配 Kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + "不存在"}
}

func conflictError(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// moneyError 金额校验失败转为参数错误
func moneyError(err error) error {
	if errors.Is(err, models.ErrInvalidMoney) {
		return &Error{Kind: ErrValidation, Message: err.Error()}
	}
	return err
}

// storeError 持久化错误转换，未识别的错误带上操作名原样包装
func storeError(err error, what, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFoundError(what)
	case errors.Is(err, store.ErrDuplicate):
		return conflictError("%s已存在", what)
	default:
		return fmt.Errorf("%s失败: %w", op, err)
	}
}
