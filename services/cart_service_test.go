package services

import (
	"math"
	"sync"
	"testing"

	"restaurant/entity"
	"restaurant/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	*fixture
	Cart        *CartService
	Alice, Bob  *entity.User
	Pizza, Soda *entity.MenuItem
}

func newCartFixture(t *testing.T) *cartFixture {
	f := newFixture(t)
	cf := &cartFixture{fixture: f, Cart: NewCartService(f.DB, f.Carts, f.Menus)}

	cf.Alice = &entity.User{Username: "alice", Password: "x"}
	cf.Bob = &entity.User{Username: "bob", Password: "x"}
	require.NoError(t, f.Users.Create(cf.Alice))
	require.NoError(t, f.Users.Create(cf.Bob))

	cf.Pizza = &entity.MenuItem{Name: "Pizza", Price: 9.99, Version: 1}
	cf.Soda = &entity.MenuItem{Name: "Soda", Price: 1.5, Version: 1}
	require.NoError(t, f.Menus.Create(cf.Pizza))
	require.NoError(t, f.Menus.Create(cf.Soda))
	return cf
}

func TestCart_EmptyAndAdd(t *testing.T) {
	cf := newCartFixture(t)

	view, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Subtotal)

	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 2))

	view, err = cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	line := view.Items[0]
	assert.Equal(t, "Pizza", line.Name)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 9.99, line.Price)
	assert.Equal(t, 19.98, line.LineTotal)
	assert.Equal(t, 19.98, view.Subtotal)
}

func TestCart_AddSameItemIncrements(t *testing.T) {
	cf := newCartFixture(t)

	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 1))
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 2))
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Soda.ID, 1))

	view, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 1, view.Items[1].Quantity)
	assert.InDelta(t, 3*9.99+1.5, view.Subtotal, 1e-9)
}

func TestCart_ConcurrentAddsKeepOneRow(t *testing.T) {
	cf := newCartFixture(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 1)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var rows []entity.CartItem
	require.NoError(t, cf.DB.Where("user_id = ?", cf.Alice.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, n, rows[0].Quantity)
}

func TestCart_AddValidation(t *testing.T) {
	cf := newCartFixture(t)

	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 0), apperr.ErrValidation)
	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, -3), apperr.ErrValidation)
	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, 999, 1), apperr.ErrNotFound)
	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, MaxQuantity+1), apperr.ErrValidation)
	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, math.MaxInt64/100), apperr.ErrValidation)

	view, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCart_QuantityCap(t *testing.T) {
	cf := newCartFixture(t)

	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Soda.ID, MaxQuantity-1))
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Soda.ID, 1))
	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, cf.Soda.ID, 1), apperr.ErrValidation)
	assert.ErrorIs(t, cf.Cart.Add(cf.Alice.ID, cf.Soda.ID, MaxQuantity), apperr.ErrValidation)

	view, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	line := view.Items[0]
	assert.Equal(t, MaxQuantity, line.Quantity)
	assert.InDelta(t, 148.5, view.Subtotal, 1e-9)

	err = cf.Cart.UpdateQty(cf.Alice.ID, line.ID, MaxQuantity+1, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	require.NoError(t, cf.Cart.UpdateQty(cf.Alice.ID, line.ID, 5, 0))

	view, err = cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestCart_IsolatedPerUser(t *testing.T) {
	cf := newCartFixture(t)
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 2))
	require.NoError(t, cf.Cart.Add(cf.Bob.ID, cf.Soda.ID, 1))

	alice, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	bob, err := cf.Cart.Get(cf.Bob.ID)
	require.NoError(t, err)

	require.Len(t, alice.Items, 1)
	require.Len(t, bob.Items, 1)
	assert.Equal(t, "Pizza", alice.Items[0].Name)
	assert.Equal(t, "Soda", bob.Items[0].Name)
}

func TestCart_CrossUserMutationsRejected(t *testing.T) {
	cf := newCartFixture(t)
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 2))
	alice, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	itemID := alice.Items[0].ID

	assert.ErrorIs(t, cf.Cart.UpdateQty(cf.Bob.ID, itemID, 5, 0), apperr.ErrForbidden)
	assert.ErrorIs(t, cf.Cart.UpdateQty(cf.Bob.ID, itemID, 0, 0), apperr.ErrForbidden)
	assert.ErrorIs(t, cf.Cart.RemoveItem(cf.Bob.ID, itemID), apperr.ErrForbidden)
	require.NoError(t, cf.Cart.Clear(cf.Bob.ID))

	alice, err = cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	require.Len(t, alice.Items, 1)
	assert.Equal(t, 2, alice.Items[0].Quantity)
}

func TestCart_UpdateQty(t *testing.T) {
	cf := newCartFixture(t)
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 1))
	view, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	line := view.Items[0]

	require.NoError(t, cf.Cart.UpdateQty(cf.Alice.ID, line.ID, 4, line.Version))
	view, err = cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)

	// stale version
	err = cf.Cart.UpdateQty(cf.Alice.ID, line.ID, 7, line.Version)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// below one removes the row
	require.NoError(t, cf.Cart.UpdateQty(cf.Alice.ID, line.ID, 0, 0))
	view, err = cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	assert.ErrorIs(t, cf.Cart.UpdateQty(cf.Alice.ID, line.ID, 1, 0), apperr.ErrNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	cf := newCartFixture(t)
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 1))
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Soda.ID, 1))
	view, err := cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)

	require.NoError(t, cf.Cart.RemoveItem(cf.Alice.ID, view.Items[0].ID))
	assert.ErrorIs(t, cf.Cart.RemoveItem(cf.Alice.ID, view.Items[0].ID), apperr.ErrNotFound)

	require.NoError(t, cf.Cart.Clear(cf.Alice.ID))
	view, err = cf.Cart.Get(cf.Alice.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCart_DeletingUserDropsCart(t *testing.T) {
	cf := newCartFixture(t)
	require.NoError(t, cf.Cart.Add(cf.Alice.ID, cf.Pizza.ID, 1))

	require.NoError(t, cf.Users.Delete(cf.Alice))

	n, err := cf.Carts.CountByMenuItem(cf.Pizza.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
