package repo_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
)

func seedOrder(t *testing.T, r *repo.GormRepo, c *models.Customer, p models.Product, qty int, status models.OrderStatus) *models.Order {
	t.Helper()
	o := &models.Order{
		CustomerID: c.ID,
		Total:      p.Price.Mul(decimal.NewFromInt(int64(qty))),
		Status:     status,
		Items:      []models.OrderItem{{ProductID: p.ID, Quantity: qty, Price: p.Price}},
	}
	require.NoError(t, r.CreateOrder(context.Background(), o))
	return o
}

func TestListOrders_SearchStatusAndDates(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	p := testdb.Product(t, db, "Chivas", "whisky", 100000, 10)
	an := &models.Customer{Name: "Nguyen Van An", Phone: testdb.Str("0900000001")}
	binh := &models.Customer{Name: "Tran Binh", Email: testdb.Str("binh@example.com")}
	require.NoError(t, r.CreateCustomer(ctx, an))
	require.NoError(t, r.CreateCustomer(ctx, binh))

	o1 := seedOrder(t, r, an, p, 1, models.OrderStatusPending)
	o2 := seedOrder(t, r, binh, p, 2, models.OrderStatusConfirmed)
	seedOrder(t, r, binh, p, 3, models.OrderStatusPending)

	old := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", o1.ID).Update("created_at", old).Error)

	cases := []struct {
		name  string
		f     repo.OrderFilter
		total int64
	}{
		{name: "all", f: repo.OrderFilter{}, total: 3},
		{name: "by customer name", f: repo.OrderFilter{Search: "van an"}, total: 1},
		{name: "by email", f: repo.OrderFilter{Search: "BINH@EXAMPLE"}, total: 2},
		{name: "by phone", f: repo.OrderFilter{Search: "0900000001"}, total: 1},
		{name: "by order id", f: repo.OrderFilter{Search: strconv.Itoa(int(o2.ID))}, total: 1},
		{name: "status and search", f: repo.OrderFilter{Search: "binh", Status: models.OrderStatusPending}, total: 1},
		{name: "date range", f: repo.OrderFilter{From: ptrTime(old.Add(-time.Hour)), To: ptrTime(old.Add(time.Hour))}, total: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.f.Limit = 10
			total, items, err := r.ListOrders(ctx, tc.f)
			require.NoError(t, err)
			assert.Equal(t, tc.total, total)
			assert.Len(t, items, int(tc.total))
			for _, o := range items {
				require.NotNil(t, o.Customer)
			}
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestUpdateOrderStatus_CompareAndSet(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	p := testdb.Product(t, db, "Chivas", "whisky", 100000, 10)
	c := &models.Customer{Name: "An"}
	require.NoError(t, r.CreateCustomer(ctx, c))
	o := seedOrder(t, r, c, p, 1, models.OrderStatusPending)

	ok, err := r.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
}

func TestGetOrderDetail(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	p := testdb.Product(t, db, "Chivas", "whisky", 100000, 10)
	c := &models.Customer{Name: "An"}
	require.NoError(t, r.CreateCustomer(ctx, c))
	o := seedOrder(t, r, c, p, 2, models.OrderStatusPending)

	got, err := r.GetOrderDetail(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "An", got.Customer.Name)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Chivas", got.Items[0].Product.Name)
	assert.True(t, decimal.NewFromInt(200000).Equal(got.Total))

	_, err = r.GetOrderDetail(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderStats(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	p := testdb.Product(t, db, "Chivas", "whisky", 100000, 10)
	c := &models.Customer{Name: "An"}
	require.NoError(t, r.CreateCustomer(ctx, c))
	seedOrder(t, r, c, p, 1, models.OrderStatusPending)
	seedOrder(t, r, c, p, 2, models.OrderStatusDelivered)
	seedOrder(t, r, c, p, 5, models.OrderStatusCancelled)

	stats, err := r.OrderStats(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.EqualValues(t, 3, stats.TodayOrders)
	assert.True(t, decimal.NewFromInt(300000).Equal(stats.Revenue), stats.Revenue.String())
	assert.True(t, decimal.NewFromInt(300000).Equal(stats.MonthRevenue), stats.MonthRevenue.String())
	assert.Len(t, stats.ByStatus, 3)
}
