package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/policy"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`

	Staff bool `json:"-" form:"-"`
}

type AuthService struct {
	db     *gorm.DB
	log    *logger.Logger
	tokens *TokenIssuer
}

func NewAuthService(db *gorm.DB, log *logger.Logger, tokens *TokenIssuer) *AuthService {
	return &AuthService{db: db, log: log.With("service", "AuthService"), tokens: tokens}
}

func (s *AuthService) validateRegistration(ctx context.Context, in *RegisterInput) error {
	v := &ValidationError{}
	username := in.Username
	textRule{field: "username", required: true, max: 150}.check(v, &username, false)
	in.Username = username
	if in.Username != "" && len(v.Fields["username"]) == 0 && !usernamePattern.MatchString(in.Username) {
		v.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if in.Email != "" {
		if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			v.Add("email", "Enter a valid email address.")
		}
	}
	validatePassword(v, in.Password)
	if err := v.Err(); err != nil {
		return err
	}

	taken, err := nameTaken(ctx, s.db, &models.Account{}, "username", in.Username, 0)
	if err != nil {
		return err
	}
	if taken {
		return usernameTaken()
	}
	return nil
}

func validatePassword(v *ValidationError, password string) {
	n := utf8.RuneCountInString(password)
	switch {
	case password == "":
		v.Add("password", msgRequired)
	case n < MinPasswordLength:
		v.Add("password", fmt.Sprintf(msgMinLen, MinPasswordLength))
	case n > MaxPasswordLength:
		v.Add("password", fmt.Sprintf(msgMaxLen, MaxPasswordLength))
	}
}

// Register creates an account and its profile in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if err := s.validateRegistration(ctx, &in); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &models.Account{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashedPassword),
		IsStaff:      in.Staff,
		DateJoined:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return err
		}
		profile := &models.Profile{
			AccountID:  account.ID,
			Avatar:     models.DefaultAvatar,
			DateJoined: now,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		account.Profile = profile
		return nil
	})
	if err != nil {
		return nil, writeErr("register", err, usernameTaken)
	}

	s.log.Info("Account registered", "account_id", account.ID, "username", account.Username, "staff", account.IsStaff)
	return account, nil
}

// Login checks a username and password. Unknown users and wrong passwords
// produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &account, nil
}

// IssueTokens logs in and returns an access/refresh pair.
func (s *AuthService) IssueTokens(ctx context.Context, username, password string) (*TokenPair, error) {
	account, err := s.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.tokens.Pair(account.ID)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.tokens.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	if _, err := s.account(ctx, claims.UserID); err != nil {
		return "", err
	}
	return s.tokens.Access(claims.UserID)
}

// AuthenticateToken resolves a bearer access token to a principal.
func (s *AuthService) AuthenticateToken(ctx context.Context, token string) (policy.Principal, error) {
	claims, err := s.tokens.Parse(token, TokenTypeAccess)
	if err != nil {
		return policy.Anonymous, err
	}
	account, err := s.account(ctx, claims.UserID)
	if err != nil {
		return policy.Anonymous, err
	}
	return PrincipalOf(account), nil
}

// account loads the token subject; a deleted account invalidates its tokens.
func (s *AuthService) account(ctx context.Context, id uint) (*models.Account, error) {
	account, err := first[models.Account](ctx, s.db, "id = ?", id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return account, err
}

func PrincipalOf(a *models.Account) policy.Principal {
	if a == nil {
		return policy.Anonymous
	}
	return policy.Principal{AccountID: a.ID, Authenticated: true, Staff: a.IsStaff}
}
