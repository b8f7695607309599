package repo

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	Search     string
	CategoryID uint
	Type       string
	InStock    bool
	Sort       string
	Offset     int
	Limit      int
}

type ProductPatch struct {
	CategoryID  *uint
	SupplierID  *uint
	Name        *string
	Type        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
}

type ProductStats struct {
	Total      int64 `json:"total"`
	LowStock   int64 `json:"low_stock"`
	Categories int64 `json:"categories"`
}

const LowStockThreshold = 5

var productSorts = map[string]string{
	"newest":     "created_at DESC, id DESC",
	"price_asc":  "price ASC, id ASC",
	"price_desc": "price DESC, id DESC",
	"name":       "name ASC, id ASC",
}

var typeTokenSep = regexp.MustCompile(`[-_\s]+`)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Preload("Supplier").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Search != "" {
		like := likePattern(f.Search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(type) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", like, like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Type != "" {
		q = q.Where(typeCondition(r.DB, f.Type))
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Preload("Category").
		Order(orderBy(productSorts, f.Sort, "newest")).
		Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// typeCondition matches a product type exactly, as a substring, or by
// requiring every token of the raw value to appear in the product name.
func typeCondition(db *gorm.DB, raw string) *gorm.DB {
	raw = strings.ToLower(strings.TrimSpace(raw))
	cond := db.Session(&gorm.Session{NewDB: true}).
		Where("LOWER(type) = ?", raw).
		Or("LOWER(type) LIKE ? ESCAPE '\\'", likePattern(raw))

	var tokens []string
	for _, t := range typeTokenSep.Split(raw, -1) {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) > 0 {
		names := db.Session(&gorm.Session{NewDB: true})
		for _, t := range tokens {
			names = names.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(t))
		}
		cond = cond.Or(names)
	}
	return cond
}

func (r *GormRepo) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Category").Preload("Supplier").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ProductsByIDs loads products keeping the order of ids; unknown ids are skipped.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// MissingProductIDs returns the ids from ids that have no product row.
func (r *GormRepo) MissingProductIDs(ctx context.Context, ids []uint) ([]uint, error) {
	var existing []uint
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
			seen[id] = struct{}{}
		}
	}
	return missing, nil
}

// DecrementStock lowers stock by qty in a single statement, clamped at zero.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uint, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", qty, qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, req ProductPatch) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		if req.CategoryID != nil {
			p.CategoryID = req.CategoryID
		}
		if req.SupplierID != nil {
			p.SupplierID = req.SupplierID
		}
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Type != nil {
			p.Type = *req.Type
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.ImageURL != nil {
			p.ImageURL = *req.ImageURL
		}
		return tx.Omit("Category", "Supplier").Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ProductInOrders(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ProductStats(ctx context.Context) (*ProductStats, error) {
	var s ProductStats
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("stock <= ?", LowStockThreshold).Count(&s.LowStock).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("category_id IS NOT NULL").
		Distinct("category_id").
		Count(&s.Categories).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}
