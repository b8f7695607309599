// Package testdb opens migrated in-memory databases for tests.
package testdb

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection would get its own empty memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.Migrate(db), "failed to migrate tables")
	return db
}

func Product(t testing.TB, db *gorm.DB, name, typ string, price int64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Type: typ, Price: decimal.NewFromInt(price), Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func User(t testing.TB, db *gorm.DB, username, role string) models.User {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func Str(s string) *string { return &s }
