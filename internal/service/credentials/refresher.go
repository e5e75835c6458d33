package credentials

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	applogger "CandleVault/pkg/logger"
)

// Secret names within the credential store.
const (
	SecretAccessToken  = "access_token"
	SecretRefreshToken = "refresh_token"
	SecretClientID     = "client_id"
	SecretAppSecret    = "app_secret"
)

// TokenExchanger trades a refresh token for a new access token.
type TokenExchanger interface {
	ExchangeRefreshToken(ctx context.Context, appIDHash, refreshToken string) (string, error)
}

// Refresher implements TokenRefresher against a credential store and the
// provider's token endpoint.
type Refresher struct {
	store    drepo.CredentialStore
	exchange TokenExchanger
	logger   *applogger.Logger
}

// NewRefresher creates a token refresher.
func NewRefresher(store drepo.CredentialStore, exchange TokenExchanger, log *applogger.Logger) *Refresher {
	if log == nil {
		log = applogger.Nop()
	}
	return &Refresher{store: store, exchange: exchange, logger: log}
}

// Credentials loads the client id and access token needed for API calls.
func (r *Refresher) Credentials(ctx context.Context) (clientID, accessToken string, err error) {
	clientID, err = r.secret(ctx, SecretClientID)
	if err != nil {
		return "", "", err
	}
	accessToken, err = r.secret(ctx, SecretAccessToken)
	if err != nil {
		return "", "", err
	}
	return clientID, accessToken, nil
}

// Refresh exchanges the stored refresh token for a new access token and
// persists it. Failure is terminal for the caller: there is no point in
// retrying API calls with a credential that cannot be renewed.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	clientID, err := r.secret(ctx, SecretClientID)
	if err != nil {
		return "", err
	}
	appSecret, err := r.secret(ctx, SecretAppSecret)
	if err != nil {
		return "", err
	}
	refreshToken, err := r.secret(ctx, SecretRefreshToken)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(clientID + ":" + appSecret))
	appIDHash := hex.EncodeToString(sum[:])

	token, err := r.exchange.ExchangeRefreshToken(ctx, appIDHash, refreshToken)
	if err != nil {
		return "", fmt.Errorf("exchange refresh token: %w", err)
	}

	if err := r.store.PutSecret(ctx, SecretAccessToken, token); err != nil {
		// The new token is still usable for this run.
		r.logger.Warn("failed to persist refreshed access token", applogger.Error(err))
	}

	r.logger.Info("access token refreshed")
	return token, nil
}

// secret loads one secret and rejects placeholder values left over from
// provisioning.
func (r *Refresher) secret(ctx context.Context, name string) (string, error) {
	v, err := r.store.GetSecret(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	if isPlaceholder(v) {
		return "", &models.AuthError{Message: fmt.Sprintf("secret %s is not configured", name)}
	}
	return v, nil
}

func isPlaceholder(v string) bool {
	switch v {
	case "", "CHANGE_ME", "PLACEHOLDER", "REPLACE_ME":
		return true
	}
	return false
}
