package repository

import (
	"time"

	"restaurant/entity"

	"gorm.io/gorm"
)

type SessionRepository struct {
	Store[entity.Session]
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{Store: NewStore[entity.Session](db)}
}

func (r *SessionRepository) FindByID(id string) (*entity.Session, error) {
	return r.GetByID(id)
}

// DeleteByID is idempotent: removing an unknown session is not an error.
func (r *SessionRepository) DeleteByID(id string) error {
	return wrap("delete session", r.DB.Where("id = ?", id).Delete(&entity.Session{}).Error)
}

// DeleteExpired prunes sessions past their expiry and returns how many went.
func (r *SessionRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.DB.Where("expires_at <= ?", now).Delete(&entity.Session{})
	if res.Error != nil {
		return 0, wrap("delete expired sessions", res.Error)
	}
	return res.RowsAffected, nil
}
