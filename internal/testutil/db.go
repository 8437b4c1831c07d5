package testutil

import (
	"testing"
	"time"

	glebarez "github.com/glebarez/sqlite"
	"github.com/localnerve/designerhub/internal/database"
	"github.com/localnerve/designerhub/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
// A single connection keeps every statement on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(glebarez.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateAccount inserts an active account with the given email and password
func CreateAccount(t *testing.T, db *gorm.DB, email, password string) models.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	account := models.Account{
		Email:        email,
		FirstName:    "Test",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&account).Error)
	return account
}

// CreateProfile inserts a profile for accountID
func CreateProfile(t *testing.T, db *gorm.DB, accountID uint64) models.Profile {
	t.Helper()

	profile := models.Profile{AccountID: accountID, Descriptions: "bio"}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

// CreateCategory inserts a category
func CreateCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

// CreateWork inserts a work owned by accountID
func CreateWork(t *testing.T, db *gorm.DB, accountID, categoryID uint64, title string) models.Work {
	t.Helper()

	work := models.Work{
		AccountID:    accountID,
		Title:        &title,
		MediaData:    "https://cdn.example.com/" + title + ".png",
		Descriptions: "description of " + models.LongText(title),
		CategoryID:   categoryID,
		Hashtag:      "#design",
	}
	require.NoError(t, db.Create(&work).Error)
	return work
}
