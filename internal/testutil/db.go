// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"realty_backend/internal/model"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
// The pool is pinned to one connection so the database survives between
// queries.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Email:     model.NormalizeEmail(email),
		Password:  string(hash),
		Role:      role,
		FirstName: "Test",
		LastName:  string(role),
		Phone:     "555-0100",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateListing inserts a listing owned by agentID. mutate may adjust the
// defaults before insertion.
func CreateListing(t *testing.T, db *gorm.DB, agentID string, status model.ListingStatus, mutate ...func(*model.Listing)) *model.Listing {
	t.Helper()

	listing := &model.Listing{
		AgentID:      agentID,
		Title:        "Sunny Bungalow",
		Description:  "Two bedroom home near the park",
		Price:        250000,
		Address:      "12 Elm Street",
		City:         "Springfield",
		State:        "IL",
		ZipCode:      "62701",
		Latitude:     39.78,
		Longitude:    -89.65,
		PropertyType: model.PropertyTypeHouse,
		Bedrooms:     2,
		Bathrooms:    1,
		SqFt:         1200,
		YearBuilt:    1995,
		Status:       status,
	}
	for _, fn := range mutate {
		fn(listing)
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}
