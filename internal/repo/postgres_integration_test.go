package repo_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/db"
)

func newPostgresRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := os.Getenv("STOREFRONT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_DATABASE_URL is required for postgres tests")
	}

	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))

	truncateTables(t, gdb)
	t.Cleanup(func() {
		truncateTables(t, gdb)
		_ = db.Close(gdb)
	})
	return &repo.GormRepo{DB: gdb}
}

func truncateTables(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	tables := make([]string, 0, len(models.All()))
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: gdb}
		require.NoError(t, stmt.Parse(m))
		tables = append(tables, pq.QuoteIdentifier(stmt.Schema.Table))
	}
	require.NoError(t, gdb.Exec("TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE").Error)
}

func TestPostgres_ConcurrentDecrementFloorsAtZero(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()

	p := &models.Product{Name: "Hennessy VS", Type: "cognac", Price: decimal.NewFromInt(900000), Stock: 3}
	require.NoError(t, r.CreateProduct(ctx, p))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Transaction(ctx, func(tx *repo.GormRepo) error {
				return tx.DecrementStock(ctx, p.ID, 1)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestPostgres_StatusCompareAndSetHasOneWinner(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()

	c := &models.Customer{Name: "Le Thi Hoa"}
	require.NoError(t, r.CreateCustomer(ctx, c))
	p := &models.Product{Name: "Remy Martin", Type: "cognac", Price: decimal.NewFromInt(1500000), Stock: 5}
	require.NoError(t, r.CreateProduct(ctx, p))
	o := &models.Order{
		CustomerID: c.ID,
		Total:      p.Price,
		Status:     models.OrderStatusPending,
		Items:      []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}},
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	targets := []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusCancelled}
	results := make([]bool, len(targets))
	var wg sync.WaitGroup
	for i, to := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, to)
			assert.NoError(t, err)
			results[i] = ok
		}()
	}
	wg.Wait()

	assert.NotEqual(t, results[0], results[1])
}

func TestPostgres_DuplicateUsernameIsTranslated(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()
	username := "u_" + uuid.NewString()

	require.NoError(t, r.CreateUserWithCustomer(ctx,
		&models.User{Username: username, PasswordHash: "x", Role: "user"},
		&models.Customer{Name: "First"}))

	err := r.CreateUserWithCustomer(ctx,
		&models.User{Username: username, PasswordHash: "x", Role: "user"},
		&models.Customer{Name: "Second"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	total, _, err := r.ListCustomers(ctx, repo.CustomerFilter{Search: "second"})
	require.NoError(t, err)
	assert.Zero(t, total)
}
