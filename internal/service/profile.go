package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/media"
	"github.com/cancerinfo/cms/internal/models"
)

type ProfileInput struct {
	Bio *string `json:"bio" form:"bio"`
}

// ProfileService handles user profile operations
type ProfileService struct {
	db      *gorm.DB
	log     *logger.Logger
	avatars AvatarStore
}

func NewProfileService(db *gorm.DB, log *logger.Logger, avatars AvatarStore) *ProfileService {
	return &ProfileService{db: db, log: log.With("service", "ProfileService"), avatars: avatars}
}

// Get returns the profile of an account with the account loaded.
func (s *ProfileService) Get(ctx context.Context, accountID uint) (*models.Profile, error) {
	return first[models.Profile](ctx, s.db, "account_id = ?", accountID, "Account")
}

func (s *ProfileService) Update(ctx context.Context, accountID uint, in ProfileInput) (*models.Profile, error) {
	profile, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	textRule{field: "bio", allowBlank: true, max: models.MaxBioLength}.check(v, in.Bio, true)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if in.Bio != nil {
		if err := s.db.WithContext(ctx).Model(profile).Update("bio", *in.Bio).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		profile.Bio = *in.Bio
	}
	return profile, nil
}

// SetAvatar resizes an uploaded image, stores it and points the profile at
// it. The previous custom avatar is removed best effort.
func (s *ProfileService) SetAvatar(ctx context.Context, accountID uint, r io.Reader) (*models.Profile, error) {
	if s.avatars == nil {
		return nil, errors.New("no media store configured")
	}
	profile, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	data, err := media.Thumbnail(r)
	if err != nil {
		if errors.Is(err, media.ErrNotAnImage) {
			return nil, &ValidationError{Fields: map[string][]string{"avatar": {"Upload a valid image. The file you uploaded was either not an image or a corrupted image."}}}
		}
		if errors.Is(err, media.ErrImageTooLarge) {
			return nil, &ValidationError{Fields: map[string][]string{"avatar": {fmt.Sprintf("Ensure the image has at most %d pixels.", media.MaxSourcePixels)}}}
		}
		return nil, &ValidationError{Fields: map[string][]string{"avatar": {err.Error()}}}
	}

	key := media.NewAvatarKey()
	if err := s.avatars.Save(ctx, key, data, "image/png"); err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	oldKey := profile.Avatar
	if err := s.db.WithContext(ctx).Model(profile).Update("avatar", key).Error; err != nil {
		removeAvatar(ctx, s.avatars, s.log, key)
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	profile.Avatar = key

	if oldKey != key {
		removeAvatar(ctx, s.avatars, s.log, oldKey)
	}
	s.log.Info("Avatar updated", "account_id", accountID, "key", key)
	return profile, nil
}

func removeAvatar(ctx context.Context, store AvatarStore, log *logger.Logger, key string) {
	if store == nil || key == "" || key == models.DefaultAvatar {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		log.Warn("failed to delete old avatar (ignored)", "key", key, "error", err)
	}
}
