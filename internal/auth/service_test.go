package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"memoir/internal/auth"
	"memoir/internal/shared/config"
)

// ---- mock Repository -------------------------------------------------------

type mockUserRepo struct {
	createUser     func(ctx context.Context, user *auth.User) error
	getUserByEmail func(ctx context.Context, email string) (*auth.User, error)
	countUsers     func(ctx context.Context) (int64, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *auth.User) error {
	return m.createUser(ctx, user)
}
func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return m.getUserByEmail(ctx, email)
}
func (m *mockUserRepo) CountUsers(ctx context.Context) (int64, error) { return m.countUsers(ctx) }

var _ auth.Repository = (*mockUserRepo)(nil)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:       "test-secret",
			JWTExpiresIn: time.Hour,
		},
	}
}

// ---- Register --------------------------------------------------------------

func TestAuthService_Register_FirstUser(t *testing.T) {
	var created *auth.User
	repo := &mockUserRepo{
		countUsers: func(_ context.Context) (int64, error) { return 0, nil },
		createUser: func(_ context.Context, user *auth.User) error {
			created = user
			return nil
		},
	}
	svc := auth.NewService(repo, testConfig())

	got, err := svc.Register(context.Background(), &auth.RegisterRequest{
		Email:    "owner@memoir.local",
		Password: "changeme123",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "changeme123", created.Password, "password is stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("changeme123")))
	assert.NotEmpty(t, got.AccessToken)
	assert.Equal(t, int64(3600), got.ExpiresIn)
}

func TestAuthService_Register_ClosedAfterFirstUser(t *testing.T) {
	repo := &mockUserRepo{
		countUsers: func(_ context.Context) (int64, error) { return 1, nil },
		createUser: func(_ context.Context, _ *auth.User) error {
			t.Fatal("no account may be created once the owner exists")
			return nil
		},
	}
	svc := auth.NewService(repo, testConfig())

	_, err := svc.Register(context.Background(), &auth.RegisterRequest{
		Email:    "second@memoir.local",
		Password: "changeme123",
	})

	assert.ErrorIs(t, err, auth.ErrRegistrationClosed)
}

// ---- Login -----------------------------------------------------------------

func TestAuthService_Login_OK(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		getUserByEmail: func(_ context.Context, _ string) (*auth.User, error) {
			return &auth.User{Email: "owner@memoir.local", Password: string(hashed)}, nil
		},
	}
	svc := auth.NewService(repo, testConfig())

	got, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "owner@memoir.local",
		Password: "changeme123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		getUserByEmail: func(_ context.Context, _ string) (*auth.User, error) {
			return &auth.User{Password: string(hashed)}, nil
		},
	}
	svc := auth.NewService(repo, testConfig())

	_, err = svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "owner@memoir.local",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := &mockUserRepo{
		getUserByEmail: func(_ context.Context, _ string) (*auth.User, error) {
			return nil, auth.ErrUserNotFound
		},
	}
	svc := auth.NewService(repo, testConfig())

	_, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "nobody@memoir.local",
		Password: "changeme123",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials, "unknown email and wrong password are indistinguishable")
}

// ---- ValidateToken ---------------------------------------------------------

func TestAuthService_ValidateToken_RoundTrip(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		getUserByEmail: func(_ context.Context, _ string) (*auth.User, error) {
			return &auth.User{Email: "owner@memoir.local", Password: string(hashed)}, nil
		},
	}
	svc := auth.NewService(repo, testConfig())

	login, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "owner@memoir.local",
		Password: "changeme123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(login.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, "owner@memoir.local", claims.Email)
	assert.Equal(t, "access", claims.Type)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	svc := auth.NewService(&mockUserRepo{}, testConfig())

	_, err := svc.ValidateToken("not-a-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		getUserByEmail: func(_ context.Context, _ string) (*auth.User, error) {
			return &auth.User{Email: "owner@memoir.local", Password: string(hashed)}, nil
		},
	}
	issuer := auth.NewService(repo, testConfig())
	login, err := issuer.Login(context.Background(), &auth.LoginRequest{
		Email:    "owner@memoir.local",
		Password: "changeme123",
	})
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "different-secret"
	verifier := auth.NewService(&mockUserRepo{}, other)

	_, err = verifier.ValidateToken(login.AccessToken)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
