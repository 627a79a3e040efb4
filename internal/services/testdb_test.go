package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/marcotondi/lfg-bot/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database shared across connections but
// private to the test. A single pooled connection keeps sqlite happy under
// the concurrency tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Table{}, &models.Registration{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, telegramID int64, firstName string) *models.User {
	t.Helper()
	user := models.User{TelegramID: telegramID, FirstName: firstName}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedMaster(t *testing.T, db *gorm.DB, telegramID int64, firstName string) *models.User {
	t.Helper()
	user := models.User{TelegramID: telegramID, FirstName: firstName, IsMaster: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed master: %v", err)
	}
	return &user
}

func seedTable(t *testing.T, db *gorm.DB, masterID uint, maxPlayers int) *models.Table {
	t.Helper()
	table := models.Table{
		MasterID:   masterID,
		Type:       models.TableTypeOneShot,
		Game:       "D&D 5e",
		Name:       "The Sunless Citadel",
		MaxPlayers: maxPlayers,
		Active:     true,
	}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("seed table: %v", err)
	}
	return &table
}
