package constant

import (
	"errors"
	"fmt"
)

// Error 错误接口
type Error interface {
	error
	Kind() Kind
	Message() string
	Details() interface{}
	WithData(data interface{}) Error
}

// CustomError 自定义错误实现，所有上游调用统一以它作为失败结果
type CustomError struct {
	kind    Kind
	message string
	data    interface{}
	cause   error
}

func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *CustomError) Kind() Kind {
	return e.kind
}

func (e *CustomError) Message() string {
	return e.message
}

func (e *CustomError) Details() interface{} {
	return e.data
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

func (e *CustomError) WithData(data interface{}) Error {
	e.data = data
	return e
}

// NewError 创建错误
func NewError(kind Kind, message string) *CustomError {
	return &CustomError{kind: kind, message: message}
}

// Wrap 保留底层错误
func Wrap(kind Kind, message string, cause error) *CustomError {
	return &CustomError{kind: kind, message: message, cause: cause}
}

func Validation(message string) *CustomError { return NewError(KindValidation, message) }

func NotFound(message string) *CustomError { return NewError(KindNotFound, message) }

func Upstream(message string, details interface{}) *CustomError {
	return &CustomError{kind: KindUpstream, message: message, data: details}
}

// KindOf 取出错误分类，非 CustomError 视为 internal
func KindOf(err error) Kind {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.kind
	}
	return KindInternal
}

// As 取出链路中的 CustomError
func As(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
