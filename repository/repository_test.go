package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"restaurant/configs"
	"restaurant/entity"
	"restaurant/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := configs.ConnectionDB(&configs.Config{
		DBDriver: "sqlite",
		DBSource: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, configs.SetupDatabase(db))
	return db
}

func TestStoreCRUD(t *testing.T) {
	store := NewStore[entity.MenuItem](newTestDB(t))

	item := &entity.MenuItem{Name: "Pizza", Price: 9.99, Version: 1}
	require.NoError(t, store.Create(item))
	require.NotZero(t, item.ID)

	got, err := store.GetByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", got.Name)

	one, err := store.FindOne("name = ?", "Pizza")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, item.ID, one.ID)

	none, err := store.FindOne("name = ?", "Sushi")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, store.Create(&entity.MenuItem{Name: "Soda", Price: 1, Version: 1}))
	all, err := store.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	cheap, err := store.FindAll("price < ?", 5)
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, "Soda", cheap[0].Name)

	got.Name = "Margherita"
	require.NoError(t, store.Update(got))
	got, err = store.GetByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", got.Name)

	require.NoError(t, store.Delete(got))
	_, err = store.GetByID(item.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(&entity.User{Username: "alice", Password: "h"}))
	err := repo.Create(&entity.User{Username: "alice", Password: "h"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
	assert.ErrorIs(t, err, apperr.ErrStorage)

	u, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	missing, err := repo.FindByUsername("bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStorageErrorsAreSurfaced(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.FindByUsername("alice")
	assert.ErrorIs(t, err, apperr.ErrStorage)
	_, err = repo.Count()
	assert.ErrorIs(t, err, apperr.ErrStorage)
	err = repo.Create(&entity.User{Username: "alice", Password: "h"})
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestMenuRepository_UpdateVersioned(t *testing.T) {
	repo := NewMenuRepository(newTestDB(t))
	item := &entity.MenuItem{Name: "Pizza", Price: 9.99, Version: 1}
	require.NoError(t, repo.Create(item))

	stale := *item
	item.Price = 10
	require.NoError(t, repo.UpdateVersioned(item))
	assert.EqualValues(t, 2, item.Version)

	stale.Price = 11
	assert.ErrorIs(t, repo.UpdateVersioned(&stale), apperr.ErrConflict)

	missing := &entity.MenuItem{ID: 404, Name: "x", Version: 1}
	assert.ErrorIs(t, repo.UpdateVersioned(missing), apperr.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteByID(404), apperr.ErrNotFound)
}

func TestCartRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	menus := NewMenuRepository(db)
	carts := NewCartRepository(db)

	u := &entity.User{Username: "alice", Password: "h"}
	require.NoError(t, users.Create(u))
	m := &entity.MenuItem{Name: "Pizza", Price: 9.99, Version: 1}
	require.NoError(t, menus.Create(m))

	found, err := carts.Increment(u.ID, m.ID, 1, 99)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, carts.Create(&entity.CartItem{UserID: u.ID, MenuItemID: m.ID, Quantity: 1, Version: 1}))
	err = carts.Create(&entity.CartItem{UserID: u.ID, MenuItemID: m.ID, Quantity: 1, Version: 1})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	found, err = carts.Increment(u.ID, m.ID, 2, 99)
	require.NoError(t, err)
	assert.True(t, found)

	// 3 + 97 would pass the cap; the row stays as it was
	found, err = carts.Increment(u.ID, m.ID, 97, 99)
	require.NoError(t, err)
	assert.False(t, found)

	pair, err := carts.FindPair(u.ID, m.ID)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, 3, pair.Quantity)
	none, err := carts.FindPair(u.ID, m.ID+1)
	require.NoError(t, err)
	assert.Nil(t, none)

	rows, err := carts.ListByUser(u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Quantity)
	assert.EqualValues(t, 2, rows[0].Version)
	assert.Equal(t, "Pizza", rows[0].MenuItem.Name)

	require.NoError(t, carts.SetQuantity(u.ID, rows[0].ID, 5, 2))
	assert.ErrorIs(t, carts.SetQuantity(u.ID, rows[0].ID, 6, 2), apperr.ErrConflict)

	n, err := carts.CountByMenuItem(m.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	err = carts.Create(&entity.CartItem{UserID: 999, MenuItemID: m.ID, Quantity: 1, Version: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.ErrorIs(t, err, apperr.ErrReferenced)
	assert.NotContains(t, strings.ToLower(err.Error()), "constraint")

	require.NoError(t, carts.ClearCart(u.ID))
	rows, err = carts.ListByUser(u.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSessionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	now := time.Now()

	require.NoError(t, repo.Create(&entity.Session{ID: "live", Kind: entity.SessionAdmin, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(&entity.Session{ID: "old", Kind: entity.SessionAdmin, ExpiresAt: now.Add(-time.Hour)}))

	n, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	s, err := repo.FindByID("live")
	require.NoError(t, err)
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))

	require.NoError(t, repo.DeleteByID("live"))
	require.NoError(t, repo.DeleteByID("live"))
	_, err = repo.FindByID("live")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
