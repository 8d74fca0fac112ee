package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	refreshTokens    map[string]*models.RefreshToken
	createRefreshErr error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail != nil {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "edu-crm-api",
	})
}

func hashed(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginCarriesCounselorScope(t *testing.T) {
	counselorID := "c-1"
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "dewi@example.com", PasswordHash: hashed(t, "password"), Active: true, Role: models.RoleCounselor, CounselorID: &counselorID}}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "dewi@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "c-1", res.User.CounselorID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCounselor, claims.Role)
	assert.Equal(t, "c-1", claims.CounselorID)
	assert.Equal(t, "edu-crm-api", claims.Issuer)
}

func TestAuthServiceLoginRejectsUnlinkedPartner(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u2", Email: "uni@example.com", PasswordHash: hashed(t, "password"), Active: true, Role: models.RolePartner}}

	_, err := newTestAuthService(repo).Login(context.Background(), models.LoginRequest{Email: "uni@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.refreshTokens)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	t.Run("inactive", func(t *testing.T) {
		repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "a@example.com", PasswordHash: hashed(t, "password"), Role: models.RoleAdmin}}
		_, err := newTestAuthService(repo).Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "password"})
		assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
	})
	t.Run("wrong password", func(t *testing.T) {
		repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "a@example.com", PasswordHash: hashed(t, "password"), Active: true, Role: models.RoleAdmin}}
		_, err := newTestAuthService(repo).Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "nope"})
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	})
	t.Run("unknown email", func(t *testing.T) {
		repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
		_, err := newTestAuthService(repo).Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "password"})
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	})
	t.Run("invalid payload", func(t *testing.T) {
		_, err := newTestAuthService(&mockAuthRepo{}).Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})
}

func TestAuthServiceRefreshToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.com", Active: true, Role: models.RoleAdmin}
	repo := &mockAuthRepo{userByID: user, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", UserID: user.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newTestAuthService(repo)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})
	token, err := svc.generateAccessToken(&models.User{ID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
