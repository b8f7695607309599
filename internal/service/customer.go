package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CustomerService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *CustomerService) ListCustomers(ctx context.Context, f repo.CustomerFilter) (int64, []models.Customer, error) {
	return s.Repo.ListCustomers(ctx, f)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	c, err := s.Repo.GetCustomer(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return c, err
}

// Me returns the profile linked to a signed-in user.
func (s *CustomerService) Me(ctx context.Context, userID uint) (*models.Customer, error) {
	c, err := s.Repo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("customer for user %d: %w", userID, ErrNotFound)
	}
	return c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, req transport.UpdateCustomerRequest) (*models.Customer, error) {
	var patch repo.CustomerPatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		patch.Name = &name
	}
	patch.Email = req.Email
	patch.Phone = req.Phone
	patch.Address = req.Address

	c, err := s.Repo.UpdateCustomer(ctx, id, patch)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *CustomerService) CustomerOrders(ctx context.Context, id uint) ([]models.Order, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	return s.Repo.OrdersByCustomer(ctx, id)
}

func (s *CustomerService) Stats(ctx context.Context) (*repo.CustomerStats, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return s.Repo.CustomerStats(ctx, now)
}
