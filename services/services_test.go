package services

import (
	"fmt"
	"strings"
	"testing"
	"wabiz/database"
	"wabiz/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a per-test in-memory database to avoid cross-test
// interference, and points the package-global handle at it.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	database.DB = db
	return db
}

func newUser(t *testing.T, db *gorm.DB, name string, role models.Role, parentID *uint) models.User {
	t.Helper()
	u := models.User{
		Name:      name,
		Email:     name + "@test.local",
		AuthToken: name + "-token",
		Role:      role,
		ParentID:  parentID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func reload(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u
}
