package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const notifyReloadTimeout = 10 * time.Second

// maxAmount bounds prices, line totals and order totals to what a
// decimal(14,2) column holds.
var maxAmount = decimal.New(1, 12)

var deliveryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier notify.Dispatcher
	Targets  notify.Targets
	// Location interprets delivery times sent without a zone.
	Location *time.Location
	Now      func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type placement struct {
	lines    []transport.OrderItemRequest
	info     transport.CustomerInfo
	hasInfo  bool
	delivery *time.Time
	total    decimal.Decimal
}

// PlaceOrder validates the cart and customer details, then writes the
// customer, order, lines and stock changes in one transaction. userID is 0
// for guests.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req transport.PlaceOrderRequest) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "order.place")

	p, err := s.validate(ctx, userID, req)
	if err != nil {
		return 0, err
	}
	if req.TotalAmount != nil && !req.TotalAmount.Equal(p.total) {
		l.Warn("client_total_mismatch", "client_total", req.TotalAmount.String(), "total", p.total.String())
	}

	var orderID uint
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cust, err := resolveCustomer(ctx, tx, userID, p)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(p.lines))
		for _, it := range p.lines {
			ids = append(ids, it.ProductID)
		}
		missing, err := tx.MissingProductIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			l.Warn("place_order_rejected", "reason", "unknown products", "product_ids", missing)
			return invalid(MsgProductNotFound)
		}

		order := buildOrder(cust, p, req.PaymentMethod)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, it := range p.lines {
			if err := tx.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", it.ProductID, err)
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.Info("order_placed", "order_id", orderID, "total", p.total.String())
	s.notifyPlaced(ctx, orderID)
	return orderID, nil
}

func (s *OrderService) validate(ctx context.Context, userID uint, req transport.PlaceOrderRequest) (*placement, error) {
	l := logging.FromContext(ctx).With("svc", "order.place")

	if len(req.Items) == 0 {
		return nil, invalid(MsgEmptyItems)
	}
	p := &placement{lines: req.Items}
	for _, it := range req.Items {
		if it.ProductID == 0 || it.Quantity <= 0 || !validAmount(it.Price) {
			return nil, invalid(MsgInvalidItems)
		}
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		p.total = p.total.Add(line)
		if line.Cmp(maxAmount) >= 0 || p.total.Cmp(maxAmount) >= 0 {
			l.Warn("place_order_rejected", "reason", "amount out of range", "product_id", it.ProductID)
			return nil, invalid(MsgInvalidItems)
		}
	}

	if req.CustomerInfo.Err != nil {
		l.Warn("customer_info_unreadable", "error", req.CustomerInfo.Err)
	}
	if info := req.CustomerInfo.Info; info != nil {
		p.info = trimInfo(*info)
		p.hasInfo = true
	}

	if userID == 0 {
		if !p.hasInfo {
			return nil, invalid(MsgMissingCustomerInfo)
		}
		if p.info.FullName == "" && p.info.Phone == "" {
			return nil, invalid(MsgMissingNameOrPhone)
		}
	}

	if p.info.DeliveryTime != "" {
		t, ok := parseDeliveryTime(p.info.DeliveryTime, s.Location)
		if !ok {
			return nil, invalid(MsgInvalidDeliveryTime)
		}
		p.delivery = &t
	}
	return p, nil
}

func trimInfo(in transport.CustomerInfo) transport.CustomerInfo {
	return transport.CustomerInfo{
		FullName:      strings.TrimSpace(in.FullName),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		Address:       strings.TrimSpace(in.Address),
		ReceiverName:  strings.TrimSpace(in.ReceiverName),
		ReceiverPhone: strings.TrimSpace(in.ReceiverPhone),
		DeliveryTime:  strings.TrimSpace(in.DeliveryTime),
		Notes:         strings.TrimSpace(in.Notes),
	}
}

func parseDeliveryTime(v string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range deliveryLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// resolveCustomer finds the buyer by account link, then email, then phone,
// and creates a guest customer when nothing matches. Signed-in users must
// already have a profile.
func resolveCustomer(ctx context.Context, tx *repo.GormRepo, userID uint, p *placement) (*models.Customer, error) {
	if userID != 0 {
		c, err := tx.CustomerByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, invalid(MsgNoCustomerProfile)
		}
		return c, nil
	}

	if p.info.Email != "" {
		c, err := tx.CustomerByEmail(ctx, p.info.Email)
		if err != nil || c != nil {
			return c, err
		}
	}
	if p.info.Phone != "" {
		c, err := tx.CustomerByPhone(ctx, p.info.Phone)
		if err != nil || c != nil {
			return c, err
		}
	}

	c := &models.Customer{
		Name:    p.info.FullName,
		Email:   nullable(p.info.Email),
		Phone:   nullable(p.info.Phone),
		Address: nullable(p.info.Address),
	}
	if err := tx.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func buildOrder(c *models.Customer, p *placement, paymentMethod string) *models.Order {
	receiverName := firstNonEmpty(p.info.ReceiverName, c.Name, p.info.FullName)
	receiverPhone := firstNonEmpty(p.info.ReceiverPhone, p.info.Phone, deref(c.Phone))
	address := firstNonEmpty(p.info.Address, deref(c.Address))

	o := &models.Order{
		CustomerID:      c.ID,
		Total:           p.total,
		Status:          models.OrderStatusPending,
		ReceiverName:    receiverName,
		ReceiverPhone:   receiverPhone,
		DeliveryTime:    p.delivery,
		ShippingAddress: address,
		Notes:           p.info.Notes,
		PaymentMethod:   strings.TrimSpace(paymentMethod),
	}
	for _, it := range p.lines {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return o
}

// notifyPlaced hands the order to the dispatcher. Failures here never undo
// or fail the placement.
func (s *OrderService) notifyPlaced(ctx context.Context, orderID uint) {
	l := logging.FromContext(ctx).With("svc", "order.notify", "order_id", orderID)
	if s.Notifier == nil {
		return
	}

	// The order is committed; a client that hung up must not lose its
	// notifications.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyReloadTimeout)
	defer cancel()

	o, err := s.Repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		l.Error("order_reload_failed", "error", err)
		return
	}
	ns := s.Targets.For(notify.SummaryFromOrder(o))
	if len(ns) == 0 {
		return
	}
	if err := s.Notifier.Dispatch(ctx, ns...); err != nil {
		l.Error("notification_dispatch_failed", "count", len(ns), "error", err)
		return
	}
	l.Info("notifications_dispatched", "count", len(ns))
}

// validAmount accepts non-negative amounts with at most two decimal places
// below maxAmount.
func validAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2)) && d.Cmp(maxAmount) < 0
}

// MyOrders lists the caller's orders. A user without a customer profile
// simply has no orders.
func (s *OrderService) MyOrders(ctx context.Context, userID uint) ([]transport.OrderView, error) {
	c, err := s.Repo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []transport.OrderView{}, nil
	}
	orders, err := s.Repo.OrdersByCustomer(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return OrderViews(orders), nil
}

func OrderViews(orders []models.Order) []transport.OrderView {
	out := make([]transport.OrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		out = append(out, transport.OrderView{
			ID:              o.ID,
			Total:           o.Total,
			Status:          string(o.Status),
			ReceiverName:    o.ReceiverName,
			ReceiverPhone:   o.ReceiverPhone,
			DeliveryTime:    o.DeliveryTime,
			ShippingAddress: o.ShippingAddress,
			PaymentMethod:   o.PaymentMethod,
			Items:           notify.SummaryFromOrder(o).ItemsLine(),
			CreatedAt:       o.CreatedAt,
		})
	}
	return out
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter) (int64, []models.Order, error) {
	if f.Status != "" {
		if _, ok := ParseStatus(string(f.Status)); !ok {
			return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
		}
	}
	return s.Repo.ListOrders(ctx, f)
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrderDetail(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return o, err
}

// UpdateStatus applies an admin status change. Moving to the current status
// is a no-op; moves outside the transition table are conflicts.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	to, ok := ParseStatus(strings.TrimSpace(raw))
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}

	o, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if o.Status != to {
		if !CanTransition(o.Status, to) {
			return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, o.Status, to)
		}
		updated, err := s.Repo.UpdateOrderStatus(ctx, id, o.Status, to)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, fmt.Errorf("%w: order %d changed concurrently", ErrConflict, id)
		}
		l.Info("order_status_changed", "from", o.Status, "to", to)
	}

	return s.GetOrder(ctx, id)
}

func (s *OrderService) Stats(ctx context.Context) (*repo.OrderStats, error) {
	return s.Repo.OrderStats(ctx, s.now())
}

func nullable(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
