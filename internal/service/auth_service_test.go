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

	"github.com/skillshareplus/skillshare-api/internal/models"
	"github.com/skillshareplus/skillshare-api/internal/repository"
	appErrors "github.com/skillshareplus/skillshare-api/pkg/errors"
)

type mockUserRepo struct {
	userByEmail    *models.User
	findByEmailErr error
	createErr      error
	created        *models.User
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.userByEmail, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = user
	return nil
}

type mockAudit struct {
	logs []*models.AuditLog
}

func (m *mockAudit) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newAuthService(repo *mockUserRepo, audit *mockAudit, expiry time.Duration) *AuthService {
	return NewAuthService(repo, audit, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: expiry,
		Issuer:            "skillshare-api",
	})
}

func TestAuthServiceSignupDefaultsToLearner(t *testing.T) {
	repo := &mockUserRepo{}
	audit := &mockAudit{}
	svc := newAuthService(repo, audit, time.Hour)

	user, err := svc.Signup(context.Background(), models.SignupRequest{Email: "New@Example.com", Password: "password"}, models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLearner, user.Role)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotEqual(t, "password", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password")))
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSignup, audit.logs[0].Action)
}

func TestAuthServiceSignupDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{createErr: repository.ErrDuplicate}
	svc := newAuthService(repo, &mockAudit{}, time.Hour)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Email: "dup@example.com", Password: "password"}, models.LoginRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
}

func TestAuthServiceSignupInvalidPayload(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockAudit{}, time.Hour)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Email: "not-an-email", Password: "pw"}, models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceSignupRejectsUnknownRole(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockAudit{}, time.Hour)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Email: "a@example.com", Password: "password", Role: "superuser"}, models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash), Role: models.RoleInstructor}}
	audit := &mockAudit{}
	svc := newAuthService(repo, audit, time.Hour)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleInstructor, res.User.Role)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleInstructor, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(repo, &mockAudit{}, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{findByEmailErr: sql.ErrNoRows}
	svc := newAuthService(repo, &mockAudit{}, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "invalid email or password", appErr.Message)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockAudit{}, -time.Minute)

	token, _, err := svc.generateAccessToken(&models.User{ID: "u1", Email: "user@example.com", Role: models.RoleLearner})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := newAuthService(&mockUserRepo{}, &mockAudit{}, time.Hour)
	token, _, err := issuer.generateAccessToken(&models.User{ID: "u1", Email: "user@example.com", Role: models.RoleLearner})
	require.NoError(t, err)

	verifier := NewAuthService(&mockUserRepo{}, &mockAudit{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "other-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockAudit{}, time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
