package models

import (
	"time"
)

// DefaultAvatar is the media key every new profile starts with.
const DefaultAvatar = "profile_pics/default.jpg"

// MaxBioLength bounds Profile.Bio in characters.
const MaxBioLength = 500

type Profile struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AccountID  uint      `gorm:"not null;uniqueIndex" json:"-"`
	Avatar     string    `gorm:"size:255;not null" json:"avatar"`
	Bio        string    `gorm:"size:500" json:"bio"`
	DateJoined time.Time `gorm:"not null" json:"date_joined"`

	Account *Account `json:"-"`
}
