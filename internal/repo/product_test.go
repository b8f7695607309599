package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
)

func names(items []models.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

func TestListProducts_FiltersAndPaging(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	testdb.Product(t, db, "Johnnie Walker Black Label", "whisky", 900000, 4)
	testdb.Product(t, db, "Chivas Regal 18", "whisky", 1800000, 10)
	testdb.Product(t, db, "Vang Đà Lạt", "red-wine", 150000, 0)
	testdb.Product(t, db, "Hennessy VSOP 100%", "cognac", 1500000, 2)

	t.Run("search is case insensitive", func(t *testing.T) {
		total, items, err := r.ListProducts(ctx, repo.ProductFilter{Search: "CHIVAS", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, []string{"Chivas Regal 18"}, names(items))
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		total, _, err := r.ListProducts(ctx, repo.ProductFilter{Search: "100%", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		total, _, err = r.ListProducts(ctx, repo.ProductFilter{Search: "%", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("type matches exactly", func(t *testing.T) {
		total, _, err := r.ListProducts(ctx, repo.ProductFilter{Type: "whisky", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("type tokens match the name", func(t *testing.T) {
		total, items, err := r.ListProducts(ctx, repo.ProductFilter{Type: "black-label", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, []string{"Johnnie Walker Black Label"}, names(items))
	})

	t.Run("in stock only", func(t *testing.T) {
		total, _, err := r.ListProducts(ctx, repo.ProductFilter{InStock: true, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("sorted and paged", func(t *testing.T) {
		total, items, err := r.ListProducts(ctx, repo.ProductFilter{Sort: "price_asc", Offset: 1, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Equal(t, []string{"Johnnie Walker Black Label", "Hennessy VSOP 100%"}, names(items))
	})
}

func TestDecrementStock_FloorsAtZero(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	p := testdb.Product(t, db, "Soju", "soju", 50000, 3)

	require.NoError(t, r.DecrementStock(ctx, p.ID, 2))
	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	require.NoError(t, r.DecrementStock(ctx, p.ID, 5))
	got, err = r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	assert.Error(t, r.DecrementStock(ctx, 9999, 1))
}

func TestProductsByIDs_KeepsOrder(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	a := testdb.Product(t, db, "A", "x", 1, 1)
	b := testdb.Product(t, db, "B", "x", 1, 1)

	items, err := r.ProductsByIDs(ctx, []uint{b.ID, 404, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, names(items))

	missing, err := r.MissingProductIDs(ctx, []uint{a.ID, 404, 404, b.ID, 405})
	require.NoError(t, err)
	assert.Equal(t, []uint{404, 405}, missing)
}

func TestProductStats(t *testing.T) {
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	cat := models.Category{Name: "Whisky"}
	require.NoError(t, db.Create(&cat).Error)

	p := testdb.Product(t, db, "A", "x", 1, 100)
	require.NoError(t, db.Model(&p).Update("category_id", cat.ID).Error)
	testdb.Product(t, db, "B", "x", 1, 5)
	testdb.Product(t, db, "C", "x", 1, 0)

	stats, err := r.ProductStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.LowStock)
	assert.EqualValues(t, 1, stats.Categories)
}
