package repository

import (
	"fmt"

	"restaurant/entity"
	"restaurant/pkg/apperr"

	"gorm.io/gorm"
)

type CartRepository struct {
	Store[entity.CartItem]
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{Store: NewStore[entity.CartItem](db)}
}

func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{Store: NewStore[entity.CartItem](tx)}
}

// ListByUser preloads MenuItem so the cart can be shown without extra queries.
func (r *CartRepository) ListByUser(userID uint) ([]entity.CartItem, error) {
	var rows []entity.CartItem
	if err := r.DB.Where("user_id = ?", userID).
		Preload("MenuItem").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, wrap("list cart", err)
	}
	return rows, nil
}

// Increment adds qty to the existing (user, menu item) row as long as the
// result stays within max. It reports whether a row was updated.
func (r *CartRepository) Increment(userID, menuItemID uint, qty, max int) (bool, error) {
	res := r.DB.Model(&entity.CartItem{}).
		Where("user_id = ? AND menu_item_id = ? AND quantity + ? <= ?", userID, menuItemID, qty, max).
		Updates(map[string]any{
			"quantity": gorm.Expr("quantity + ?", qty),
			"version":  gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, wrap("increment cart item", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindPair returns the user's row for menuItemID, or nil when there is none.
func (r *CartRepository) FindPair(userID, menuItemID uint) (*entity.CartItem, error) {
	return r.FindOne("user_id = ? AND menu_item_id = ?", userID, menuItemID)
}

// SetQuantity updates a row owned by userID. version 0 skips the version check.
func (r *CartRepository) SetQuantity(userID, itemID uint, qty int, version uint) error {
	tx := r.DB.Model(&entity.CartItem{}).Where("id = ? AND user_id = ?", itemID, userID)
	if version != 0 {
		tx = tx.Where("version = ?", version)
	}
	res := tx.Updates(map[string]any{
		"quantity": qty,
		"version":  gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return wrap("update cart quantity", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d was modified concurrently: %w", itemID, apperr.ErrConflict)
	}
	return nil
}

func (r *CartRepository) RemoveItem(userID, itemID uint) error {
	res := r.DB.Where("id = ? AND user_id = ?", itemID, userID).Delete(&entity.CartItem{})
	if res.Error != nil {
		return wrap("remove cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("remove cart item %d: %w", itemID, apperr.ErrNotFound)
	}
	return nil
}

func (r *CartRepository) ClearCart(userID uint) error {
	return wrap("clear cart", r.DB.Where("user_id = ?", userID).Delete(&entity.CartItem{}).Error)
}

func (r *CartRepository) CountByMenuItem(menuItemID uint) (int64, error) {
	var n int64
	if err := r.DB.Model(&entity.CartItem{}).Where("menu_item_id = ?", menuItemID).Count(&n).Error; err != nil {
		return 0, wrap("count cart rows", err)
	}
	return n, nil
}

func (r *CartRepository) DeleteByMenuItem(menuItemID uint) error {
	return wrap("delete cart rows", r.DB.Where("menu_item_id = ?", menuItemID).Delete(&entity.CartItem{}).Error)
}
