package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store/drivers/sqlite"
	"github.com/campusware/edukit/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

// fakeProvider is an in-process stand-in for the identity provider and the
// userinfo endpoint. Behavior toggles let tests force rejections.
type fakeProvider struct {
	srv *httptest.Server

	mu             sync.Mutex
	exchangeCalls  int
	refreshCalls   int
	revokeCalls    int
	rejectExchange bool
	rejectRefresh  bool

	userID    string
	userName  string
	userEmail string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{
		userID:    "user-1",
		userName:  "Alex Teacher",
		userEmail: "alex@example.edu",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", p.handleToken)
	mux.HandleFunc("POST /revoke", p.handleRevoke)
	mux.HandleFunc("GET /oauth2/v2/userinfo", p.handleUserinfo)

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_ = r.ParseForm()
	switch r.Form.Get("grant_type") {
	case "refresh_token":
		p.refreshCalls++
		if p.rejectRefresh {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
	default:
		p.exchangeCalls++
		if p.rejectExchange {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "provider-access-token",
		"refresh_token": "provider-refresh-token",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func (p *fakeProvider) handleRevoke(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.revokeCalls++
	p.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (p *fakeProvider) handleUserinfo(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      p.userID,
		"name":    p.userName,
		"email":   p.userEmail,
		"picture": "https://example.edu/portrait.png",
	})
}

func (p *fakeProvider) counts() (exchange, refresh, revoke int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exchangeCalls, p.refreshCalls, p.revokeCalls
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	key := make([]byte, cryptox.SealKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(key)
	require.NoError(t, err)

	st, err := sqlite.NewStore("file:"+filepath.Join(t.TempDir(), "test.db"), sealer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

type testEnv struct {
	st       *sqlite.Store
	provider *fakeProvider
	sessions *SessionService
	creds    *CredentialService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newTestStore(t)
	provider := newFakeProvider(t)

	return &testEnv{
		st:       st,
		provider: provider,
		sessions: &SessionService{Store: st, TTL: time.Hour},
		creds: &CredentialService{
			Store: st,
			OAuth: &oauth2.Config{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				RedirectURL:  "https://addon.example.com/oauth2/callback",
				Scopes:       []string{"scope.addons", "scope.userinfo"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  provider.srv.URL + "/authorize",
					TokenURL: provider.srv.URL + "/token",
				},
			},
			StateTTL:         10 * time.Minute,
			ExpiryMargin:     time.Minute,
			RevocationURL:    provider.srv.URL + "/revoke",
			UserinfoEndpoint: provider.srv.URL + "/",
		},
	}
}

func (e *testEnv) establishSession(t *testing.T) domain.Session {
	t.Helper()
	sess, _, err := e.sessions.Establish(context.Background())
	require.NoError(t, err)
	return sess
}

// authorize runs the full begin/complete round trip for sess and returns
// the refreshed session with its user binding.
func (e *testEnv) authorize(t *testing.T, sess domain.Session) domain.Session {
	t.Helper()
	ctx := context.Background()

	state := e.beginAndExtractState(t, sess.ID, "")
	_, err := e.creds.CompleteAuthorization(ctx, sess.ID, state, "auth-code")
	require.NoError(t, err)

	got, err := e.st.Sessions().GetSessionByTokenHash(ctx, sess.TokenHash)
	require.NoError(t, err)
	return got
}

func (e *testEnv) beginAndExtractState(t *testing.T, sessionID, loginHint string) string {
	t.Helper()

	authURL, err := e.creds.BeginAuthorization(context.Background(), sessionID, loginHint)
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}
