package credentials

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"CandleVault/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	secrets map[string]string
	putErr  error
}

func (s *fakeStore) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := s.secrets[name]
	if !ok {
		return "", fmt.Errorf("secret %s not found", name)
	}
	return v, nil
}

func (s *fakeStore) PutSecret(_ context.Context, name, value string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.secrets[name] = value
	return nil
}

type fakeExchanger struct {
	token   string
	err     error
	gotHash string
	gotRT   string
}

func (e *fakeExchanger) ExchangeRefreshToken(_ context.Context, appIDHash, refreshToken string) (string, error) {
	e.gotHash = appIDHash
	e.gotRT = refreshToken
	return e.token, e.err
}

func provisionedStore() *fakeStore {
	return &fakeStore{secrets: map[string]string{
		SecretClientID:     "APPID-100",
		SecretAppSecret:    "s3cret",
		SecretAccessToken:  "old-token",
		SecretRefreshToken: "refresh-me",
	}}
}

func TestRefreshExchangesAndPersists(t *testing.T) {
	store := provisionedStore()
	exchanger := &fakeExchanger{token: "new-token"}
	r := NewRefresher(store, exchanger, nil)

	token, err := r.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "new-token", token)
	assert.Equal(t, "new-token", store.secrets[SecretAccessToken])
	assert.Equal(t, "refresh-me", exchanger.gotRT)

	sum := sha256.Sum256([]byte("APPID-100:s3cret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), exchanger.gotHash)
}

func TestRefreshPersistFailureStillReturnsToken(t *testing.T) {
	store := provisionedStore()
	store.putErr = errors.New("store unavailable")
	r := NewRefresher(store, &fakeExchanger{token: "new-token"}, nil)

	token, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestRefreshExchangeFailure(t *testing.T) {
	r := NewRefresher(provisionedStore(), &fakeExchanger{err: &models.AuthError{Status: 401, Message: "invalid refresh token"}}, nil)

	_, err := r.Refresh(context.Background())
	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestRefreshRejectsPlaceholderSecrets(t *testing.T) {
	for _, placeholder := range []string{"", "CHANGE_ME", "PLACEHOLDER", "REPLACE_ME"} {
		store := provisionedStore()
		store.secrets[SecretAppSecret] = placeholder
		r := NewRefresher(store, &fakeExchanger{token: "x"}, nil)

		_, err := r.Refresh(context.Background())
		var authErr *models.AuthError
		require.ErrorAs(t, err, &authErr, "placeholder %q", placeholder)
		assert.Contains(t, authErr.Message, SecretAppSecret)
	}
}

func TestRefreshMissingSecret(t *testing.T) {
	store := provisionedStore()
	delete(store.secrets, SecretRefreshToken)
	r := NewRefresher(store, &fakeExchanger{token: "x"}, nil)

	_, err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), SecretRefreshToken)
}

func TestCredentials(t *testing.T) {
	r := NewRefresher(provisionedStore(), &fakeExchanger{}, nil)

	clientID, accessToken, err := r.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "APPID-100", clientID)
	assert.Equal(t, "old-token", accessToken)
}

func TestCredentialsUnprovisioned(t *testing.T) {
	store := provisionedStore()
	store.secrets[SecretAccessToken] = "CHANGE_ME"
	r := NewRefresher(store, &fakeExchanger{}, nil)

	_, _, err := r.Credentials(context.Background())
	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
}
