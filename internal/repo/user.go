package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUserWithCustomer inserts the user and links the customer profile to it
// in one transaction.
func (r *GormRepo) CreateUserWithCustomer(ctx context.Context, u *models.User, c *models.Customer) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Create(u).Error; err != nil {
			return err
		}
		c.UserID = &u.ID
		return tx.DB.Omit("User").Create(c).Error
	})
}
