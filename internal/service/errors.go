package service

import (
	"errors"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Messages shown to shoppers.
const (
	MsgEmptyItems          = "Danh sách sản phẩm trống"
	MsgInvalidItems        = "Sản phẩm trong giỏ hàng không hợp lệ"
	MsgMissingCustomerInfo = "Vui lòng nhập đầy đủ thông tin khách hàng"
	MsgMissingNameOrPhone  = "Vui lòng cung cấp tên hoặc số điện thoại khách hàng"
	MsgInvalidDeliveryTime = "Thời gian nhận hàng không hợp lệ"
	MsgNoCustomerProfile   = "Không tìm thấy thông tin khách hàng"
	MsgProductNotFound     = "Sản phẩm không tồn tại"
	MsgOrderPlaced         = "Đặt hàng thành công"
	MsgInternal            = "Lỗi hệ thống"
)

// ValidationError carries the message the client should see. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
