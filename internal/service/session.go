package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
)

// SessionService manages login sessions for the HTML pages.
type SessionService struct {
	db  *gorm.DB
	log *logger.Logger
	ttl time.Duration
	now func() time.Time
}

func NewSessionService(db *gorm.DB, log *logger.Logger, ttl time.Duration) *SessionService {
	return &SessionService{db: db, log: log.With("service", "SessionService"), ttl: ttl, now: time.Now}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Create(ctx context.Context, accountID uint) (*models.Session, error) {
	sess := &models.Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Lookup returns the account behind a live session. Expired sessions are
// removed and reported as ErrNotFound.
func (s *SessionService) Lookup(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var sess models.Session
	err := s.db.WithContext(ctx).Preload("Account").Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if sess.Expired(s.now()) || sess.Account == nil {
		if err := s.Delete(ctx, token); err != nil {
			s.log.Warn("Failed to remove expired session", "error", err)
		}
		return nil, ErrNotFound
	}
	return sess.Account, nil
}

func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

// PurgeExpired deletes every expired session and returns how many were
// removed.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
