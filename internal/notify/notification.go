package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/config"
)

type Kind string

const (
	KindAdminEmail    Kind = "admin_email"
	KindCustomerEmail Kind = "customer_email"
	KindChatWebhook   Kind = "chat_webhook"
)

var ErrUnknownKind = errors.New("unknown notification kind")

type LineSummary struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderSummary is the denormalized order snapshot carried by every notification.
type OrderSummary struct {
	OrderID         uint            `json:"order_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	ReceiverName    string          `json:"receiver_name"`
	ReceiverPhone   string          `json:"receiver_phone"`
	ShippingAddress string          `json:"shipping_address"`
	DeliveryTime    *time.Time      `json:"delivery_time,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Items           []LineSummary   `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SummaryFromOrder expects o to carry its Customer and Items.Product.
func SummaryFromOrder(o *models.Order) OrderSummary {
	s := OrderSummary{
		OrderID:         o.ID,
		ReceiverName:    o.ReceiverName,
		ReceiverPhone:   o.ReceiverPhone,
		ShippingAddress: o.ShippingAddress,
		DeliveryTime:    o.DeliveryTime,
		Notes:           o.Notes,
		PaymentMethod:   o.PaymentMethod,
		Status:          string(o.Status),
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
	}
	if c := o.Customer; c != nil {
		s.CustomerName = c.Name
		if c.Email != nil {
			s.CustomerEmail = *c.Email
		}
		if c.Phone != nil {
			s.CustomerPhone = *c.Phone
		}
	}
	for _, it := range o.Items {
		name := fmt.Sprintf("#%d", it.ProductID)
		if it.Product != nil {
			name = it.Product.Name
		}
		s.Items = append(s.Items, LineSummary{
			ProductID: it.ProductID,
			Name:      name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			LineTotal: it.LineTotal(),
		})
	}
	return s
}

// ItemsLine renders the lines as "name (xN), ...".
func (s OrderSummary) ItemsLine() string {
	parts := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

type Notification struct {
	ID        string       `json:"id"`
	Kind      Kind         `json:"kind"`
	Recipient string       `json:"recipient,omitempty"`
	Order     OrderSummary `json:"order"`
	Attempt   int          `json:"attempt"`
	CreatedAt time.Time    `json:"created_at"`
}

func New(kind Kind, recipient string, order OrderSummary) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Recipient: recipient,
		Order:     order,
		CreatedAt: time.Now().UTC(),
	}
}

// Targets decides who hears about a placed order.
type Targets struct {
	AdminEmail  string
	ChatWebhook bool
}

// For builds the notifications for one order. The customer only gets an
// email when one is on file.
func (t Targets) For(s OrderSummary) []Notification {
	var out []Notification
	if t.AdminEmail != "" {
		out = append(out, New(KindAdminEmail, t.AdminEmail, s))
	}
	if t.ChatWebhook {
		out = append(out, New(KindChatWebhook, "", s))
	}
	if s.CustomerEmail != "" {
		out = append(out, New(KindCustomerEmail, s.CustomerEmail, s))
	}
	return out
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ns ...Notification) error
}

// Router sends each notification through the sender registered for its kind.
type Router map[Kind]Sender

func (r Router) Send(ctx context.Context, n Notification) error {
	s, ok := r[n.Kind]
	if !ok || s == nil {
		return backoff.Permanent(fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind))
	}
	return s.Send(ctx, n)
}

// NewRouter registers the email sender when SMTP_HOST is set and the chat
// sender when CHAT_WEBHOOK_URL is set. Kinds left out fail permanently.
func NewRouter(cfg config.Config) (Router, error) {
	r := Router{}
	if cfg.SMTPHost != "" {
		client, err := NewSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
		if err != nil {
			return nil, fmt.Errorf("notify: smtp client: %w", err)
		}
		email := &EmailSender{Client: client, From: cfg.MailFrom, ShopName: cfg.ShopName}
		r[KindAdminEmail] = email
		r[KindCustomerEmail] = email
	}
	if cfg.ChatWebhookURL != "" {
		r[KindChatWebhook] = NewWebhookSender(cfg.ChatWebhookURL, cfg.ChatWebhookToken, cfg.ShopName)
	}
	return r, nil
}
