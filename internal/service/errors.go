package service

import "errors"

// 校验类错误: 调用方输入有误，HTTP 层映射为 400。
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailTaken        = errors.New("registration failed: email already registered")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTotalMismatch     = errors.New("total does not match catalog prices")
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDelivery             = errors.New("notification delivery failed")
	ErrInternalServer       = errors.New("internal server error")
)

// IsValidation 判断错误是否由调用方输入引起。
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrTotalMismatch)
}
