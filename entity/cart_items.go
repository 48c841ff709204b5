package entity

import "time"

// CartItem: one row per (user, menu item) pair, enforced by idx_cart_user_item.
type CartItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"userId"`
	MenuItemID uint      `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"menuItemId"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	Version    uint      `gorm:"not null;default:1" json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// RESTRICT backs the default delete policy; cascade is done by the service.
	MenuItem MenuItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // preload เฉพาะตอนแสดง cart
}
