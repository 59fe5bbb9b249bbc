package twitch_token

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"twitch_live_notifier/internal/models"
)

const twitchTokenCheckBGSync = "twitchTokenCheck_BGSync"

// TokenStore persists issued tokens and their expiry state.
type TokenStore interface {
	GetNotExpiredToken(ctx context.Context) (*string, error)
	AddToken(ctx context.Context, token string) error
	RotateToken(ctx context.Context, oldToken, newToken string) error
}

// OauthClient issues and validates app tokens against the Twitch id service.
type OauthClient interface {
	TwitchOAuthGetToken(ctx context.Context) (*models.TwitchOautGetTokenResponse, error)
	TwitchOAuthValidateToken(ctx context.Context, token string) (*models.TwitchOautValidateTokenResponse, error)
}

type TwitchTokenService struct {
	store TokenStore
	oauth OauthClient

	// syncMu serializes validate/refresh cycles: the poll loop, the command
	// surface and the admin endpoints can all request a Sync concurrently,
	// but only one refresh may be in flight.
	syncMu sync.Mutex

	mu    sync.RWMutex
	token string
}

func NewTwitchTokenService(store TokenStore, oauth OauthClient) (*TwitchTokenService, error) {
	service := &TwitchTokenService{
		store: store,
		oauth: oauth,
	}

	ctx := context.Background()
	err := service.Sync(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Sync")
	}

	return service, nil
}

func (tts *TwitchTokenService) GetCurrentToken(ctx context.Context) string {
	tts.mu.RLock()
	defer tts.mu.RUnlock()
	return tts.token
}

func (tts *TwitchTokenService) setToken(token string) {
	tts.mu.Lock()
	tts.token = token
	tts.mu.Unlock()
}

// Sync validates the stored token's remaining lifetime and swaps in a fresh
// one when it is expired or rejected. Validation and refresh stay separate
// operations: a validation failure only triggers the refresh path.
func (tts *TwitchTokenService) Sync(ctx context.Context) error {

	tts.syncMu.Lock()
	defer tts.syncMu.Unlock()

	token, err := tts.store.GetNotExpiredToken(ctx)
	if err != nil {
		return errors.Wrap(err, "GetNotExpiredToken")
	}

	if token == nil {

		fresh, err := tts.fetchToken(ctx)
		if err != nil {
			return errors.Wrap(err, "fetchToken")
		}

		err = tts.store.AddToken(ctx, fresh)
		if err != nil {
			return errors.Wrap(err, "AddToken")
		}

		tts.setToken(fresh)

		return nil
	}

	validateInfo, err := tts.oauth.TwitchOAuthValidateToken(ctx, *token)
	if err != nil {
		var invalid *models.ValidationError
		if errors.As(err, &invalid) {
			return tts.replaceToken(ctx, *token)
		}

		return errors.Wrap(err, "TwitchOAuthValidateToken")
	}

	if validateInfo.ExpiresIn == 0 {
		logrus.Info("twitch token has no lifetime left, refreshing")
		return tts.replaceToken(ctx, *token)
	}

	tts.setToken(*token)

	return nil
}

func (tts *TwitchTokenService) replaceToken(ctx context.Context, oldToken string) error {

	fresh, err := tts.fetchToken(ctx)
	if err != nil {
		return errors.Wrap(err, "fetchToken")
	}

	err = tts.store.RotateToken(ctx, oldToken, fresh)
	if err != nil {
		return errors.Wrap(err, "RotateToken")
	}

	tts.setToken(fresh)

	return nil
}

func (tts *TwitchTokenService) fetchToken(ctx context.Context) (string, error) {

	tokenInfo, err := tts.oauth.TwitchOAuthGetToken(ctx)
	if err != nil {
		return "", errors.Wrap(err, "TwitchOAuthGetToken")
	}

	if tokenInfo == nil {
		return "", errors.Wrap(errors.New("empty client resp"), "TwitchOAuthGetToken")
	}

	return tokenInfo.AccessToken, nil
}

// SyncBg re-checks the token on every poll interval. A failed check is
// logged and retried next tick, never fatal to the loop.
func (tts *TwitchTokenService) SyncBg(ctx context.Context, updateInterval time.Duration) {
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stoping bg %s process", twitchTokenCheckBGSync)
			return
		case <-ticker.C:
			logrus.Infof("started bg %s process", twitchTokenCheckBGSync)
			err := tts.Sync(ctx)
			if err != nil {
				logrus.Infof("could not check twitch token: %v", err)
				continue
			}
			logrus.Info("twitch token check was completed")
		}
	}
}
