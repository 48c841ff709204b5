package services

import (
	"fmt"
	"testing"

	"restaurant/configs"
	"restaurant/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the schema
// migrated. One connection keeps concurrent tests free of lock errors while
// statements from different goroutines still interleave.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &configs.Config{
		DBDriver: "sqlite",
		DBSource: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}
	db, err := configs.ConnectionDB(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, configs.SetupDatabase(db))
	return db
}

type fixture struct {
	DB       *gorm.DB
	Users    *repository.UserRepository
	Menus    *repository.MenuRepository
	Carts    *repository.CartRepository
	Sessions *repository.SessionRepository
	Creds    *CredentialService
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		DB:       db,
		Users:    repository.NewUserRepository(db),
		Menus:    repository.NewMenuRepository(db),
		Carts:    repository.NewCartRepository(db),
		Sessions: repository.NewSessionRepository(db),
		Creds:    NewCredentialService(bcrypt.MinCost),
	}
}
