package repo

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type OrderFilter struct {
	Search string
	Status models.OrderStatus
	From   *time.Time
	To     *time.Time
	Sort   string
	Offset int
	Limit  int
}

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type OrderStats struct {
	TotalOrders  int64           `json:"total_orders"`
	TodayOrders  int64           `json:"today_orders"`
	MonthOrders  int64           `json:"month_orders"`
	Revenue      decimal.Decimal `json:"revenue"`
	MonthRevenue decimal.Decimal `json:"month_revenue"`
	ByStatus     []StatusCount   `json:"by_status"`
}

var orderSorts = map[string]string{
	"newest":     "created_at DESC, id DESC",
	"oldest":     "created_at ASC, id ASC",
	"total_desc": "total DESC, id DESC",
	"total_asc":  "total ASC, id ASC",
}

// Orders in these states do not count as revenue.
var nonRevenueStatuses = []models.OrderStatus{models.OrderStatusCancelled, models.OrderStatusRefunded}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Customer").Create(o).Error
}

func (r *GormRepo) GetOrderDetail(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if s := strings.TrimSpace(f.Search); s != "" {
		like := likePattern(s)
		customers := r.DB.Model(&models.Customer{}).Select("id").Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\'",
			like, like, like,
		)
		if id, err := strconv.ParseUint(s, 10, 64); err == nil {
			q = q.Where("orders.id = ? OR orders.customer_id IN (?)", id, customers)
		} else {
			q = q.Where("orders.customer_id IN (?)", customers)
		}
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("orders.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("orders.created_at < ?", *f.To)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Order
	if err := q.Preload("Customer").
		Preload("Items.Product").
		Order(orderBy(orderSorts, f.Sort, "newest")).
		Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// OrdersByCustomer returns every order of a customer, newest first, with lines
// and their products loaded.
func (r *GormRepo) OrdersByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var items []models.Order
	if err := r.DB.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateOrderStatus moves an order from one status to another only if it is
// still in the expected status. It reports false when another writer got there first.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) OrderStats(ctx context.Context, now time.Time) (*OrderStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	orders := func() *gorm.DB { return r.DB.WithContext(ctx).Model(&models.Order{}) }

	var s OrderStats
	if err := orders().Count(&s.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("created_at >= ?", dayStart).Count(&s.TodayOrders).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("created_at >= ?", monthStart).Count(&s.MonthOrders).Error; err != nil {
		return nil, err
	}

	var revenue, monthRevenue decimal.NullDecimal
	if err := orders().Where("status NOT IN ?", nonRevenueStatuses).
		Select("SUM(total)").Row().Scan(&revenue); err != nil {
		return nil, err
	}
	if err := orders().Where("status NOT IN ? AND created_at >= ?", nonRevenueStatuses, monthStart).
		Select("SUM(total)").Row().Scan(&monthRevenue); err != nil {
		return nil, err
	}
	s.Revenue = revenue.Decimal
	s.MonthRevenue = monthRevenue.Decimal

	if err := orders().Select("status, COUNT(*) AS count").
		Group("status").Order("status ASC").
		Scan(&s.ByStatus).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
