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
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	IsAdmin     bool
}

// Register creates an account together with its customer profile.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.Customer, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: username and a password of at least %d characters are required", ErrValidation, minPasswordLen)
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		name = username
	}

	existing, err := s.Repo.UserByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: pwHash, Role: middleware.RoleUser}
	cust := &models.Customer{
		Name:    name,
		Email:   nullable(req.Email),
		Phone:   nullable(req.Phone),
		Address: nullable(req.Address),
	}
	if err := s.Repo.CreateUserWithCustomer(ctx, user, cust); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return nil, err
	}
	return cust, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	user, err := s.Repo.UserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	exp := time.Now().Add(tokens.AccessTTL)
	token, err := tokens.NewAccessToken(user.ID, user.Role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken: token,
		AccessExp:   exp,
		IsAdmin:     user.Role == middleware.RoleAdmin,
	}, nil
}
