package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type CustomerFilter struct {
	Search string
	Sort   string
	Offset int
	Limit  int
}

// CustomerPatch holds the fields to change. A blank Email, Phone or Address
// clears the column.
type CustomerPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

type CustomerStats struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
	Month int64 `json:"month"`
}

var customerSorts = map[string]string{
	"name":   "name ASC, id ASC",
	"newest": "created_at DESC, id DESC",
	"oldest": "created_at ASC, id ASC",
}

// findCustomer returns the oldest customer matching the condition, or nil.
func (r *GormRepo) findCustomer(ctx context.Context, query string, arg any) (*models.Customer, error) {
	var c models.Customer
	res := r.DB.WithContext(ctx).Where(query, arg).Order("id ASC").Limit(1).Find(&c)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *GormRepo) CustomerByUserID(ctx context.Context, userID uint) (*models.Customer, error) {
	return r.findCustomer(ctx, "user_id = ?", userID)
}

func (r *GormRepo) CustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.findCustomer(ctx, "email = ?", email)
}

func (r *GormRepo) CustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return r.findCustomer(ctx, "phone = ?", phone)
}

func (r *GormRepo) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := r.DB.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListCustomers(ctx context.Context, f CustomerFilter) (int64, []models.Customer, error) {
	q := r.DB.WithContext(ctx).Model(&models.Customer{})
	if f.Search != "" {
		like := likePattern(f.Search)
		users := r.DB.Model(&models.User{}).Select("id").Where("LOWER(username) LIKE ? ESCAPE '\\'", like)
		q = q.Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\' OR user_id IN (?)",
			like, like, like, users,
		)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Customer
	if err := q.Preload("User").
		Order(orderBy(customerSorts, f.Sort, "name")).
		Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) UpdateCustomer(ctx context.Context, id uint, p CustomerPatch) (*models.Customer, error) {
	var c models.Customer
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Email != nil {
			c.Email = blankToNil(*p.Email)
		}
		if p.Phone != nil {
			c.Phone = blankToNil(*p.Phone)
		}
		if p.Address != nil {
			c.Address = blankToNil(*p.Address)
		}
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CustomerStats(ctx context.Context, now time.Time) (*CustomerStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var s CustomerStats
	db := r.DB.WithContext(ctx).Model(&models.Customer{})
	if err := db.Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Customer{}).Where("created_at >= ?", dayStart).Count(&s.Today).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Customer{}).Where("created_at >= ?", monthStart).Count(&s.Month).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func blankToNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
