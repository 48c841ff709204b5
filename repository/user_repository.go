package repository

import (
	"restaurant/entity"

	"gorm.io/gorm"
)

// UserRepository talks to the users table only.
type UserRepository struct {
	Store[entity.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Store: NewStore[entity.User](db)}
}

// FindByUsername returns (nil, nil) for an unknown username.
func (r *UserRepository) FindByUsername(username string) (*entity.User, error) {
	return r.FindOne("username = ?", username)
}

func (r *UserRepository) FindByID(id uint) (*entity.User, error) {
	return r.GetByID(id)
}

func (r *UserRepository) Count() (int64, error) {
	var n int64
	if err := r.DB.Model(&entity.User{}).Count(&n).Error; err != nil {
		return 0, wrap("count users", err)
	}
	return n, nil
}
