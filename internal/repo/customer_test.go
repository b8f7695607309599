package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
)

func TestCustomerLookups_PreferOldest(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	first := &models.Customer{Name: "First", Phone: testdb.Str("0911")}
	second := &models.Customer{Name: "Second", Phone: testdb.Str("0911")}
	require.NoError(t, r.CreateCustomer(ctx, first))
	require.NoError(t, r.CreateCustomer(ctx, second))

	got, err := r.CustomerByPhone(ctx, "0911")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = r.CustomerByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListCustomers_SearchIncludesUsername(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	u := testdb.User(t, db, "ruoungon", "user")
	require.NoError(t, r.CreateCustomer(ctx, &models.Customer{Name: "Le Chi", UserID: &u.ID}))
	require.NoError(t, r.CreateCustomer(ctx, &models.Customer{Name: "Pham Dung", Email: testdb.Str("dung@example.com")}))
	require.NoError(t, r.CreateCustomer(ctx, &models.Customer{Name: "Hoang Em", Phone: testdb.Str("0987")}))

	total, items, err := r.ListCustomers(ctx, repo.CustomerFilter{Search: "RUOU", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].User)
	assert.Equal(t, "ruoungon", items[0].User.Username)

	total, _, err = r.ListCustomers(ctx, repo.CustomerFilter{Search: "098", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	total, items, err = r.ListCustomers(ctx, repo.CustomerFilter{Sort: "name", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Hoang Em", items[0].Name)
}

func TestUpdateCustomer_BlankClears(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	c := &models.Customer{Name: "An", Email: testdb.Str("an@example.com"), Phone: testdb.Str("0900")}
	require.NoError(t, r.CreateCustomer(ctx, c))

	got, err := r.UpdateCustomer(ctx, c.ID, repo.CustomerPatch{Name: testdb.Str("An Nguyen"), Email: testdb.Str("  ")})
	require.NoError(t, err)
	assert.Equal(t, "An Nguyen", got.Name)
	assert.Nil(t, got.Email)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "0900", *got.Phone)
}

func TestCustomerStats(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, r.CreateCustomer(ctx, &models.Customer{Name: "Today"}))
	old := &models.Customer{Name: "Old"}
	require.NoError(t, r.CreateCustomer(ctx, old))
	require.NoError(t, db.Model(old).Update("created_at", now.AddDate(-1, 0, 0)).Error)

	stats, err := r.CustomerStats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Today)
	assert.EqualValues(t, 1, stats.Month)
}
