package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCustomerService(t *testing.T) {
	env := newOrderEnv(t)
	svc := &service.CustomerService{Repo: env.svc.Repo}
	ctx := context.Background()
	testdb.Product(t, env.db, "A", "x", 1000, 5)

	_, err := env.svc.PlaceOrder(ctx, 0, placeReq(t, `{
		"items": [{"product_id": 1, "quantity": 1, "price": 1000}],
		"customer_info": {"full_name": "Vo F", "phone": "0966"}
	}`))
	require.NoError(t, err)

	var c models.Customer
	require.NoError(t, env.db.First(&c).Error)

	got, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vo F", got.Name)

	orders, err := svc.CustomerOrders(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	email := "vof@example.com"
	updated, err := svc.UpdateCustomer(ctx, c.ID, transport.UpdateCustomerRequest{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, updated.Email)
	assert.Equal(t, email, *updated.Email)

	blank := ""
	_, err = svc.UpdateCustomer(ctx, c.ID, transport.UpdateCustomerRequest{Name: &blank})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.GetCustomer(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.CustomerOrders(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.UpdateCustomer(ctx, 999, transport.UpdateCustomerRequest{Email: &email})
	assert.ErrorIs(t, err, service.ErrNotFound)

	u := testdb.User(t, env.db, "nobody", "user")
	_, err = svc.Me(ctx, u.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Total)
}
