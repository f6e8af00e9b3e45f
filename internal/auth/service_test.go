package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepgrind/theory-platform/internal/auth/jwt"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

type stubUserRepo struct {
	byID    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	solved  map[uuid.UUID][]uuid.UUID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
		solved:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *stubUserRepo) Create(_ context.Context, u User) error {
	if _, exists := r.byEmail[u.Email]; exists {
		return fmt.Errorf("email already registered: %w", httperrors.ErrConflict)
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	return r.byID[id], nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	return u, nil
}

func (r *stubUserRepo) UpdateLogin(_ context.Context, _ uuid.UUID) error { return nil }

func (r *stubUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u := r.byID[id]
	u.PasswordHash = hash
	r.byID[id] = u
	return nil
}

func (r *stubUserRepo) SolvedQuestions(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.solved[id], nil
}

func testTokenConfig() jwt.TokenConfig {
	return jwt.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Issuer:        "test",
	}
}

func newTestAuthService() (*Service, *stubUserRepo) {
	repo := newStubUserRepo()
	svc := NewService(repo, ServiceOptions{TokenConfig: testTokenConfig()}, zerolog.Nop())
	return svc, repo
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	assert.NoError(t, VerifyPassword(hash, "testpassword123"))
	assert.Error(t, VerifyPassword(hash, "wrongpassword"))
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Equal(t, ErrPasswordTooShort, err)
}

func TestRegister_CreatesStandardUser(t *testing.T) {
	svc, repo := newTestAuthService()

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Jordan",
		Email:    "Jordan@Example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleStandard, user.Role)
	assert.Equal(t, "jordan@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	stored, err := repo.GetByEmail(context.Background(), "jordan@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	req := RegisterRequest{Name: "Jordan", Email: "jordan@example.com", Password: "supersecret"}

	_, _, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLogin_RoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Jordan", Email: "jordan@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	user, tokens, err := svc.Login(context.Background(), LoginRequest{
		Email: "jordan@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "jordan@example.com", user.Email)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, RoleStandard, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Jordan", Email: "jordan@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), LoginRequest{
		Email: "jordan@example.com", Password: "notthepassword",
	})
	assert.Error(t, err)
}

func TestLogin_OAuthOnlyAccount(t *testing.T) {
	svc, repo := newTestAuthService()

	// OAuth accounts carry no password hash and cannot log in directly.
	oauthUser := User{ID: uuid.New(), DisplayName: "G User", Email: "g@example.com", Role: RoleStandard}
	require.NoError(t, repo.Create(context.Background(), oauthUser))

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "g@example.com", Password: "anything1"})
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService()

	_, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Jordan", Email: "jordan@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestCurrentUser_IncludesSolvedSet(t *testing.T) {
	svc, repo := newTestAuthService()

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Jordan", Email: "jordan@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	q1, q2 := uuid.New(), uuid.New()
	repo.solved[user.ID] = []uuid.UUID{q1, q2}

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)

	got, solved, err := svc.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, []uuid.UUID{q1, q2}, solved)
}

func TestCurrentUser_NoClaims(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.CurrentUser(context.Background(), nil)
	assert.ErrorIs(t, err, httperrors.ErrAuthenticationRequired)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleStandard))
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleRecruiter))
	assert.False(t, ValidRole("owner"))
}
