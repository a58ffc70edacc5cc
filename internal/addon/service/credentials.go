package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/campusware/edukit/internal/addon/classroom"
	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/cryptox"
	"github.com/campusware/edukit/pkg/slogx"
)

var (
	// ErrStateMismatch is returned when the callback's anti-forgery state
	// does not match the pending state, is expired, or was already used.
	ErrStateMismatch = errors.New("state_mismatch")

	// ErrExchangeFailed is returned when the provider rejects the
	// authorization code exchange.
	ErrExchangeFailed = errors.New("exchange_failed")

	// ErrNoCredential is returned when a session has no usable credential
	// and no stored refresh token can mint one silently.
	ErrNoCredential = errors.New("no_credential")

	// ErrRefreshFailed is a terminal refresh failure: the stored credential
	// has been discarded and the user must re-authorize interactively.
	ErrRefreshFailed = errors.New("refresh_failed")
)

// CredentialService owns the OAuth2 authorization-code lifecycle for
// sessions: starting the redirect, completing the callback, keeping access
// tokens fresh, and revoking on sign-out.
type CredentialService struct {
	Store store.Store
	OAuth *oauth2.Config

	// StateTTL bounds how long a pending authorization may sit between
	// redirect and callback.
	StateTTL time.Duration

	// ExpiryMargin is subtracted from token expiry when judging freshness,
	// so in-flight API calls don't race the real expiry.
	ExpiryMargin time.Duration

	// RevocationURL is the provider's token revocation endpoint.
	RevocationURL string

	// UserinfoEndpoint overrides the Google userinfo endpoint. Tests point
	// it at a local fake; empty means the real service.
	UserinfoEndpoint string

	// HTTPClient is used for revocation calls. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// BeginAuthorization stores a single-use anti-forgery state for the session
// and returns the provider URL to redirect the user to. Offline access is
// always requested so a refresh token can be stored on first consent.
func (s *CredentialService) BeginAuthorization(ctx context.Context, sessionID, loginHint string) (string, error) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	pending := domain.PendingState{
		SessionID: sessionID,
		StateHash: cryptox.FingerprintToken(state),
		CreatedAt: now,
		ExpiresAt: now.Add(s.StateTTL),
	}
	if err := s.Store.Credentials().SetPendingState(ctx, pending); err != nil {
		return "", err
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", loginHint))
	}
	return s.OAuth.AuthCodeURL(state, opts...), nil
}

// CompleteAuthorization finishes the callback leg: it consumes the pending
// state (making it single use), exchanges the code, resolves the user's
// identity, and stores both the session credential and the user profile.
//
// Any state problem, including replay of an already-consumed state, maps to
// ErrStateMismatch. A rejected code maps to ErrExchangeFailed. In both
// cases the session is left without a credential and the flow restarts
// from the beginning.
func (s *CredentialService) CompleteAuthorization(ctx context.Context, sessionID, state, code string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	pending, err := s.Store.Credentials().ConsumePendingState(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrStateMismatch
		}
		return domain.User{}, err
	}

	now := time.Now().UTC()
	if pending.Expired(now) {
		return domain.User{}, ErrStateMismatch
	}
	if subtle.ConstantTimeCompare(
		[]byte(cryptox.FingerprintToken(state)),
		[]byte(pending.StateHash),
	) != 1 {
		return domain.User{}, ErrStateMismatch
	}

	tok, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		log.Warn("authorization code exchange rejected", "error", err)
		return domain.User{}, ErrExchangeFailed
	}

	var profileOpts []classroom.Option
	if s.UserinfoEndpoint != "" {
		profileOpts = append(profileOpts, classroom.WithEndpoint(s.UserinfoEndpoint))
	}
	profile, err := classroom.FetchProfile(ctx, s.OAuth.TokenSource(ctx, tok), profileOpts...)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           profile.ID,
		DisplayName:  profile.Name,
		Email:        profile.Email,
		PortraitURL:  profile.PictureURL,
		RefreshToken: tok.RefreshToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpsertUser(ctx, user); err != nil {
			return err
		}
		if err := tx.Sessions().BindSessionUser(ctx, sessionID, user.ID); err != nil {
			return err
		}
		return tx.Credentials().UpsertCredential(ctx, domain.Credential{
			SessionID:    sessionID,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    tok.Expiry.UTC(),
			Scopes:       s.OAuth.Scopes,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("authorization completed", "session_id", sessionID, "user_id", user.ID)
	return user, nil
}

// ValidCredential returns a credential for the session that is fresh for at
// least ExpiryMargin and carries every configured scope.
//
// Resolution order:
//  1. A fresh stored session credential is returned as-is.
//  2. A stale one is refreshed with its refresh token.
//  3. A session with no credential but a bound user falls back to the
//     user's stored refresh token, which is what lets a returning user
//     skip the consent screen on a brand new session.
//
// A refresh rejection is terminal: the credential is deleted and
// ErrRefreshFailed is returned so the caller restarts interactive
// authorization. Missing scopes also surface as ErrNoCredential since only
// a new consent can widen a grant.
func (s *CredentialService) ValidCredential(ctx context.Context, session domain.Session) (domain.Credential, error) {
	now := time.Now().UTC()

	cred, err := s.Store.Credentials().GetCredentialBySession(ctx, session.ID)
	switch {
	case err == nil:
		if !cred.HasScopes(s.OAuth.Scopes) {
			return domain.Credential{}, ErrNoCredential
		}
		if cred.Fresh(now, s.ExpiryMargin) {
			return cred, nil
		}
		if cred.RefreshToken == "" {
			_ = s.Store.Credentials().DeleteCredentialBySession(ctx, session.ID)
			return domain.Credential{}, ErrNoCredential
		}
		return s.refresh(ctx, session.ID, cred.RefreshToken, now)

	case errors.Is(err, store.ErrNotFound):
		if session.UserID == "" {
			return domain.Credential{}, ErrNoCredential
		}
		user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
		if err != nil || user.RefreshToken == "" {
			return domain.Credential{}, ErrNoCredential
		}
		return s.refresh(ctx, session.ID, user.RefreshToken, now)

	default:
		return domain.Credential{}, err
	}
}

// refresh mints a fresh access token from a refresh token and stores the
// result as the session's credential. Failure discards any stored
// credential for the session and is terminal.
func (s *CredentialService) refresh(ctx context.Context, sessionID, refreshToken string, now time.Time) (domain.Credential, error) {
	log := slogx.FromContext(ctx)

	ts := s.OAuth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		log.Warn("credential refresh rejected, discarding credential",
			"session_id", sessionID, "error", err)
		_ = s.Store.Credentials().DeleteCredentialBySession(ctx, sessionID)
		return domain.Credential{}, ErrRefreshFailed
	}

	// Providers rotate refresh tokens at their discretion; keep whichever
	// one is current.
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}

	cred := domain.Credential{
		SessionID:    sessionID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.UTC(),
		Scopes:       s.OAuth.Scopes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Credentials().UpsertCredential(ctx, cred); err != nil {
		return domain.Credential{}, err
	}
	return cred, nil
}

// TokenSource returns an oauth2.TokenSource backed by the session's valid
// credential, suitable for host API calls made on behalf of the user.
func (s *CredentialService) TokenSource(ctx context.Context, session domain.Session) (oauth2.TokenSource, error) {
	cred, err := s.ValidCredential(ctx, session)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.ExpiresAt,
	}
	return s.OAuth.TokenSource(ctx, tok), nil
}

// UserTokenSource returns a token source backed by the user's stored
// refresh token, independent of any live session. Grade passback uses this
// to act under the attachment creator's credential.
func (s *CredentialService) UserTokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCredential
		}
		return nil, err
	}
	if user.RefreshToken == "" {
		return nil, ErrNoCredential
	}
	return s.OAuth.TokenSource(ctx, &oauth2.Token{RefreshToken: user.RefreshToken}), nil
}

// Revoke tells the provider to revoke the session's tokens and always
// deletes the local credential, even when the provider call fails. The
// provider invalidates the whole token family on revocation, so the stored
// user refresh token dies with it.
func (s *CredentialService) Revoke(ctx context.Context, session domain.Session) error {
	log := slogx.FromContext(ctx)

	cred, err := s.Store.Credentials().GetCredentialBySession(ctx, session.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token := cred.RefreshToken
	if token == "" {
		token = cred.AccessToken
	}
	if s.RevocationURL != "" && token != "" {
		if err := s.revokeRemote(ctx, token); err != nil {
			log.Warn("provider revocation failed, deleting local credential anyway",
				"session_id", session.ID, "error", err)
		}
	}

	return s.Store.Credentials().DeleteCredentialBySession(ctx, session.ID)
}

func (s *CredentialService) revokeRemote(ctx context.Context, token string) error {
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.RevocationURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.New("revocation endpoint returned " + res.Status)
	}
	return nil
}
