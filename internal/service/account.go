package service

import (
	"context"
	"fmt"
	"net/mail"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
)

// AccountInput is the editable part of an account.
type AccountInput struct {
	Username  *string `json:"username" form:"username"`
	Email     *string `json:"email" form:"email"`
	FirstName *string `json:"first_name" form:"first_name"`
	LastName  *string `json:"last_name" form:"last_name"`
}

type AccountService struct {
	db      *gorm.DB
	log     *logger.Logger
	avatars AvatarStore
}

func NewAccountService(db *gorm.DB, log *logger.Logger, avatars AvatarStore) *AccountService {
	return &AccountService{db: db, log: log.With("service", "AccountService"), avatars: avatars}
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	err := s.db.WithContext(ctx).Preload("Profile").Order("username").Find(&out).Error
	return out, err
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.Account, error) {
	return first[models.Account](ctx, s.db, "id = ?", id, "Profile")
}

func (s *AccountService) Update(ctx context.Context, id uint, in AccountInput) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	textRule{field: "username", required: true, max: 150}.check(v, in.Username, true)
	if in.Username != nil && *in.Username != "" && len(v.Fields["username"]) == 0 && !usernamePattern.MatchString(*in.Username) {
		v.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	textRule{field: "email", allowBlank: true, max: 254}.check(v, in.Email, true)
	if in.Email != nil && *in.Email != "" {
		if addr, err := mail.ParseAddress(*in.Email); err != nil || addr.Address != *in.Email {
			v.Add("email", "Enter a valid email address.")
		}
	}
	textRule{field: "first_name", allowBlank: true, max: 150}.check(v, in.FirstName, true)
	textRule{field: "last_name", allowBlank: true, max: 150}.check(v, in.LastName, true)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != account.Username {
		taken, err := nameTaken(ctx, s.db, &models.Account{}, "username", *in.Username, account.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, usernameTaken()
		}
	}

	assign(&account.Username, in.Username)
	assign(&account.Email, in.Email)
	assign(&account.FirstName, in.FirstName)
	assign(&account.LastName, in.LastName)

	err = s.db.WithContext(ctx).Model(account).Select("username", "email", "first_name", "last_name").
		Updates(account).Error
	if err != nil {
		return nil, writeErr("update account", err, usernameTaken)
	}
	return account, nil
}

// Delete removes an account with its sessions and profile. A custom avatar
// is removed from the media store afterwards, best effort.
func (s *AccountService) Delete(ctx context.Context, id uint) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Account{}, account.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete account: %w", err)
	}

	if account.Profile != nil {
		removeAvatar(ctx, s.avatars, s.log, account.Profile.Avatar)
	}
	s.log.Info("Account deleted", "account_id", account.ID, "username", account.Username)
	return account, nil
}
