package auth

import (
	"context"
	"testing"
	"time"

	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository/repotest"
	"powerrush_backend/internal/service"
	"powerrush_backend/pkg/token"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

type jwtConfig struct{}

func (jwtConfig) AccessTokenSecretKey() []byte       { return secret }
func (jwtConfig) AccessTokenDuration() time.Duration { return time.Hour }

type gameConfig struct{}

func (gameConfig) Location() *time.Location        { return time.UTC }
func (gameConfig) DefaultSettings() model.Settings { return model.Settings{} }
func (gameConfig) DefaultAdminPassword() string    { return "admin123" }
func (gameConfig) SessionIdleTTL() time.Duration   { return time.Minute }
func (gameConfig) SweepInterval() time.Duration    { return time.Minute }

func newService(t *testing.T) (*serv, *repotest.Admin) {
	t.Helper()
	repo := &repotest.Admin{}
	s := NewAuthService(repo, jwtConfig{}, gameConfig{}, clockwork.NewRealClock(), zap.NewNop()).(*serv)
	require.NoError(t, s.Init(context.Background()))
	return s, repo
}

func TestLoginWithDefaultPassword(t *testing.T) {
	s, _ := newService(t)

	accessToken, err := s.Login(context.Background(), "admin123")
	require.NoError(t, err)

	claims, err := token.VerifyToken(accessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	_, err = s.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidPassword)
}

func TestInitKeepsExistingPassword(t *testing.T) {
	s, repo := newService(t)
	before, err := repo.GetPasswordHash(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Init(context.Background()))

	after, err := repo.GetPasswordHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		wantErr error
	}{
		{"wrong current", "nope", "secret1", "secret1", service.ErrInvalidPassword},
		{"too short", "admin123", "abc", "abc", service.ErrPasswordTooShort},
		{"mismatch", "admin123", "secret1", "secret2", service.ErrPasswordMismatch},
		{"ok", "admin123", "secret1", "secret1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newService(t)
			ctx := context.Background()

			err := s.ChangePassword(ctx, tt.current, tt.next, tt.confirm)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, err = s.Login(ctx, "admin123")
				assert.NoError(t, err)
				return
			}

			require.NoError(t, err)
			_, err = s.Login(ctx, "admin123")
			assert.ErrorIs(t, err, service.ErrInvalidPassword)
			_, err = s.Login(ctx, tt.next)
			assert.NoError(t, err)
		})
	}
}
