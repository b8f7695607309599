package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `                                json:"created_at"`
}

type Customer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint     `gorm:"uniqueIndex"              json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     *string   `gorm:"index"                    json:"email"`
	Phone     *string   `gorm:"index"                    json:"phone"`
	Address   *string   `                                json:"address"`
	CreatedAt time.Time `                                json:"created_at"`
	UpdatedAt time.Time `                                json:"updated_at"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;not null"     json:"name"`
	Description string `                                json:"description"`
}

type Supplier struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null"                 json:"name"`
	Phone   string `                                json:"phone"`
	Email   string `                                json:"email"`
	Address string `                                json:"address"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  *uint           `gorm:"index"                    json:"category_id"`
	Category    *Category       `                                json:"category,omitempty"`
	SupplierID  *uint           `gorm:"index"                    json:"supplier_id"`
	Supplier    *Supplier       `                                json:"supplier,omitempty"`
	Name        string          `gorm:"not null"                 json:"name"`
	Type        string          `gorm:"index"                    json:"type"`
	Description string          `                                json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0"       json:"stock"`
	ImageURL    string          `                                json:"image_url"`
	CreatedAt   time.Time       `                                json:"created_at"`
	UpdatedAt   time.Time       `                                json:"updated_at"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	CustomerID      uint            `gorm:"index;not null"                 json:"customer_id"`
	Customer        *Customer       `                                      json:"customer,omitempty"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"    json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	ReceiverName    string          `                                      json:"receiver_name"`
	ReceiverPhone   string          `                                      json:"receiver_phone"`
	DeliveryTime    *time.Time      `                                      json:"delivery_time"`
	ShippingAddress string          `                                      json:"shipping_address"`
	Notes           string          `                                      json:"notes"`
	PaymentMethod   string          `                                      json:"payment_method"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE"    json:"items,omitempty"`
	CreatedAt       time.Time       `gorm:"index"                          json:"created_at"`
	UpdatedAt       time.Time       `                                      json:"updated_at"`
}

// OrderItem is an immutable order line; Price is the unit price captured
// when the order was placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"index;not null"              json:"product_id"`
	Product   *Product        `                                   json:"product,omitempty"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func All() []any {
	return []any{
		&User{},
		&Customer{},
		&Category{},
		&Supplier{},
		&Product{},
		&Order{},
		&OrderItem{},
	}
}
