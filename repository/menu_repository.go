package repository

import (
	"fmt"

	"restaurant/entity"
	"restaurant/pkg/apperr"

	"gorm.io/gorm"
)

type MenuRepository struct {
	Store[entity.MenuItem]
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{Store: NewStore[entity.MenuItem](db)}
}

// WithTx returns a repository bound to tx.
func (r *MenuRepository) WithTx(tx *gorm.DB) *MenuRepository {
	return &MenuRepository{Store: NewStore[entity.MenuItem](tx)}
}

func (r *MenuRepository) List() ([]entity.MenuItem, error) {
	return r.FindAll(nil)
}

func (r *MenuRepository) FindByID(id uint) (*entity.MenuItem, error) {
	return r.GetByID(id)
}

// UpdateVersioned writes item only if the stored version still equals
// item.Version, then bumps it. A mismatch is apperr.ErrConflict.
func (r *MenuRepository) UpdateVersioned(item *entity.MenuItem) error {
	res := r.DB.Model(&entity.MenuItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"name":        item.Name,
			"description": item.Description,
			"price":       item.Price,
			"image_url":   item.ImageURL,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return wrap("update menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(item.ID); err != nil {
			return err
		}
		return fmt.Errorf("menu item %d was modified concurrently: %w", item.ID, apperr.ErrConflict)
	}
	item.Version++
	return nil
}

// DeleteByID returns apperr.ErrNotFound when nothing was deleted.
func (r *MenuRepository) DeleteByID(id uint) error {
	res := r.DB.Delete(&entity.MenuItem{}, id)
	if res.Error != nil {
		return wrap("delete menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete menu item %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *MenuRepository) Count() (int64, error) {
	var n int64
	if err := r.DB.Model(&entity.MenuItem{}).Count(&n).Error; err != nil {
		return 0, wrap("count menu items", err)
	}
	return n, nil
}
