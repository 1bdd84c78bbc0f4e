package models

import (
	"time"
)

// Account is a login identity. Staff accounts may write every resource.
type Account struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	DateJoined   time.Time `gorm:"not null" json:"date_joined"`

	Profile  *Profile  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions []Session `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

// Session is a server-side login session for the HTML interface.
type Session struct {
	Token     string    `gorm:"size:36;primarykey"`
	AccountID uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time

	Account *Account
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
