package entity

import "time"

type SessionKind string

const (
	SessionUser  SessionKind = "user"
	SessionAdmin SessionKind = "admin"
)

// Session is the server-side half of a cookie session. Deleting the row
// invalidates the cookie even before it expires.
type Session struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	Kind      SessionKind `gorm:"size:10;not null" json:"kind"`
	UserID    *uint       `gorm:"index" json:"userId,omitempty"`
	ExpiresAt time.Time   `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time   `json:"createdAt"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
