package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CustomerInfo struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ReceiverName  string `json:"receiver_name"`
	ReceiverPhone string `json:"receiver_phone"`
	DeliveryTime  string `json:"delivery_time"`
	Notes         string `json:"notes"`
}

var errCustomerInfoShape = errors.New("customer_info is not an object")

// CustomerInfoField accepts customer_info either as a JSON object or as a
// string holding a JSON object. Any other shape leaves Info nil; Err keeps the
// reason so callers can log it.
type CustomerInfoField struct {
	Info *CustomerInfo
	Err  error
}

func (f *CustomerInfoField) UnmarshalJSON(data []byte) error {
	f.Info, f.Err = nil, nil
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			f.Err = err
			return nil
		}
		f.Info, f.Err = decodeCustomerObject([]byte(raw))
		return nil
	default:
		f.Info, f.Err = decodeCustomerObject(data)
		return nil
	}
}

func (f CustomerInfoField) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Info)
}

func decodeCustomerObject(data []byte) (*CustomerInfo, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errCustomerInfoShape
	}
	var info CustomerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type PlaceOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	CustomerInfo  CustomerInfoField  `json:"customer_info"`
	PaymentMethod string             `json:"payment_method"`
	TotalAmount   *decimal.Decimal   `json:"total_amount"`
}

type PlaceOrderResponse struct {
	Message string `json:"message"`
	OrderID uint   `json:"order_id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderView is an order as listed to its owner, with lines folded into a
// single "name (xN), ..." string.
type OrderView struct {
	ID              uint            `json:"id"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	ReceiverName    string          `json:"receiver_name"`
	ReceiverPhone   string          `json:"receiver_phone"`
	DeliveryTime    *time.Time      `json:"delivery_time"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Items           string          `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateProductRequest struct {
	CategoryID  *uint           `json:"category_id"`
	SupplierID  *uint           `json:"supplier_id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

type PatchProductRequest struct {
	CategoryID  *uint            `json:"category_id"`
	SupplierID  *uint            `json:"supplier_id"`
	Name        *string          `json:"name"`
	Type        *string          `json:"type"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"image_url"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}
