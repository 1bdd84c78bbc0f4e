package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
	"github.com/cancerinfo/cms/internal/testhelpers"
)

const testSecret = "test-secret"

func setupAuth(t *testing.T) (*gorm.DB, *service.AuthService) {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	issuer := service.NewTokenIssuer(testSecret, 5*time.Minute, 24*time.Hour)
	return db, service.NewAuthService(db, logger.Nop(), issuer)
}

func register(t *testing.T, auth *service.AuthService, username string, staff bool) *models.Account {
	t.Helper()
	account, err := auth.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
		Staff:    staff,
	})
	require.NoError(t, err)
	return account
}

func TestRegisterCreatesProfile(t *testing.T) {
	db, auth := setupAuth(t)

	account := register(t, auth, "budi", false)
	assert.NotZero(t, account.ID)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)
	assert.False(t, account.IsStaff)

	var profile models.Profile
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&profile).Error)
	assert.Equal(t, models.DefaultAvatar, profile.Avatar)
	assert.Equal(t, "", profile.Bio)
}

func TestRegisterValidation(t *testing.T) {
	db, auth := setupAuth(t)
	ctx := context.Background()
	register(t, auth, "siti", false)

	cases := []struct {
		name  string
		in    service.RegisterInput
		field string
	}{
		{"short password", service.RegisterInput{Username: "a1", Password: "short"}, "password"},
		{"long password", service.RegisterInput{Username: "a2", Password: strings.Repeat("p", 129)}, "password"},
		{"missing username", service.RegisterInput{Password: "long-enough"}, "username"},
		{"bad username", service.RegisterInput{Username: "no spaces", Password: "long-enough"}, "username"},
		{"bad email", service.RegisterInput{Username: "a3", Email: "nope", Password: "long-enough"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.in)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	_, err := auth.Register(ctx, service.RegisterInput{Username: "siti", Password: "long-enough"})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	var n int64
	require.NoError(t, db.Model(&models.Account{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&models.Profile{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestLogin(t *testing.T) {
	_, auth := setupAuth(t)
	ctx := context.Background()
	account := register(t, auth, "andi", false)

	got, err := auth.Login(ctx, "andi", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = auth.Login(ctx, "andi", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestTokenFlow(t *testing.T) {
	_, auth := setupAuth(t)
	ctx := context.Background()
	staff := register(t, auth, "admin", true)

	pair, err := auth.IssueTokens(ctx, "admin", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	principal, err := auth.AuthenticateToken(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, principal.AccountID)
	assert.True(t, principal.Authenticated)
	assert.True(t, principal.Staff)

	access, err := auth.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	_, err = auth.AuthenticateToken(ctx, access)
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = auth.AuthenticateToken(ctx, pair.Refresh)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = auth.AuthenticateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = auth.IssueTokens(ctx, "admin", "bad")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestTokenRejectedAfterExpiryOrWrongSecret(t *testing.T) {
	expired := service.NewTokenIssuer(testSecret, -time.Minute, -time.Minute)
	pair, err := expired.Pair(1)
	require.NoError(t, err)
	_, err = expired.Parse(pair.Access, service.TokenTypeAccess)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other := service.NewTokenIssuer("other-secret", time.Minute, time.Minute)
	pair, err = other.Pair(1)
	require.NoError(t, err)
	valid := service.NewTokenIssuer(testSecret, time.Minute, time.Minute)
	_, err = valid.Parse(pair.Access, service.TokenTypeAccess)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTokenForDeletedAccount(t *testing.T) {
	db, auth := setupAuth(t)
	ctx := context.Background()
	account := register(t, auth, "temp", false)
	pair, err := auth.IssueTokens(ctx, "temp", "correct-horse")
	require.NoError(t, err)

	accounts := service.NewAccountService(db, logger.Nop(), nil)
	_, err = accounts.Delete(ctx, account.ID)
	require.NoError(t, err)

	_, err = auth.AuthenticateToken(ctx, pair.Access)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = auth.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
