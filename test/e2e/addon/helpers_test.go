package addon_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/campusware/edukit/internal/addon/classroom"
	httpapi "github.com/campusware/edukit/internal/addon/http"
	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/internal/addon/store/drivers/sqlite"
	"github.com/campusware/edukit/pkg/cryptox"
	"github.com/campusware/edukit/pkg/jwtx"
	"github.com/campusware/edukit/pkg/slogx"
)

// identityProvider fakes the OAuth2 token and userinfo endpoints. The
// current profile is switchable so one test can authorize several users.
type identityProvider struct {
	srv *httptest.Server

	mu        sync.Mutex
	userID    string
	userName  string
	userEmail string
}

func newIdentityProvider(t *testing.T) *identityProvider {
	t.Helper()

	p := &identityProvider{}
	p.setUser("teacher-1", "Alex Teacher", "alex@example.edu")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "provider-access-token",
			"refresh_token": "provider-refresh-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("POST /revoke", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    p.userID,
			"name":  p.userName,
			"email": p.userEmail,
		})
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *identityProvider) setUser(id, name, email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userID, p.userName, p.userEmail = id, name, email
}

// recordingHost captures host platform calls made by the service.
type recordingHost struct {
	mu      sync.Mutex
	nextID  string
	created []classroom.Attachment
	grades  []float64
}

func (h *recordingHost) CreateAttachment(ctx context.Context, courseID, itemID, addOnToken string, att classroom.Attachment, teacherViewURI, studentViewURI, reviewURI string) (classroom.Attachment, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	att.ID = h.nextID
	h.created = append(h.created, att)
	return att, nil
}

func (h *recordingHost) PatchSubmissionGrade(ctx context.Context, courseID, itemID, attachmentID, submissionID string, points float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grades = append(h.grades, points)
	return nil
}

type addonEnv struct {
	srv      *httptest.Server
	provider *identityProvider
	host     *recordingHost
	key      *rsa.PrivateKey
}

// setupAddon wires the full service against in-process fakes and serves it
// over TLS so the Secure session cookie round-trips.
func setupAddon(t *testing.T) *addonEnv {
	t.Helper()

	sealKey := make([]byte, cryptox.SealKeySize)
	_, err := rand.Read(sealKey)
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(sealKey)
	require.NoError(t, err)

	st, err := sqlite.NewStore("file:"+filepath.Join(t.TempDir(), "e2e.db"), sealer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	provider := newIdentityProvider(t)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	sessions := &service.SessionService{Store: st, TTL: time.Hour}
	creds := &service.CredentialService{
		Store: st,
		OAuth: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://addon.example.com/oauth2/callback",
			Scopes:       []string{"scope.addons"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  provider.srv.URL + "/authorize",
				TokenURL: provider.srv.URL + "/token",
			},
		},
		StateTTL:         10 * time.Minute,
		ExpiryMargin:     time.Minute,
		RevocationURL:    provider.srv.URL + "/revoke",
		UserinfoEndpoint: provider.srv.URL + "/",
	}

	host := &recordingHost{nextID: "attachment-1"}
	attachments := &service.AttachmentService{
		Store:       st,
		Credentials: creds,
		NewHostClient: func(ctx context.Context, ts oauth2.TokenSource) (service.HostClient, error) {
			return host, nil
		},
		BaseURL: "https://addon.example.com",
	}
	launch := &service.LaunchService{
		Store:       st,
		Credentials: creds,
		Verifier: &service.TokenRoleVerifier{
			Verifier: jwtx.NewVerifier(&key.PublicKey, "host-platform", "edukit"),
		},
	}

	logger := slogx.New(slogx.Config{Service: "addon-service", Version: "test", Env: "test", Level: "error", Format: "text"})
	router := httpapi.NewRouter("test", st, logger)
	router.SessionService = sessions
	router.CredentialService = creds
	router.LaunchService = launch
	router.AttachmentService = attachments
	router.ApplyRoutes()

	srv := httptest.NewTLSServer(router)
	t.Cleanup(srv.Close)

	return &addonEnv{srv: srv, provider: provider, host: host, key: key}
}

// browser returns a cookie-keeping client that does not follow redirects,
// so tests can inspect each hop.
func (e *addonEnv) browser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := e.srv.Client()
	client.Jar = jar
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

func (e *addonEnv) launchToken(t *testing.T, role, courseID, itemID, attachmentID string) string {
	t.Helper()

	claims := jwtx.LaunchClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "host-platform",
			Audience:  jwt.ClaimStrings{"edukit"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
		Role:         role,
		CourseID:     courseID,
		ItemID:       itemID,
		AttachmentID: attachmentID,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(e.key)
	require.NoError(t, err)
	return raw
}

func get(t *testing.T, client *http.Client, rawURL string) (*http.Response, string) {
	t.Helper()

	res, err := client.Get(rawURL)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) (*http.Response, string) {
	t.Helper()

	res, err := client.Post(rawURL, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

// authorizeUser drives the popup flow for the current provider user: start
// authorization, capture the state from the redirect, and hit the callback.
func (e *addonEnv) authorizeUser(t *testing.T, client *http.Client) {
	t.Helper()

	res, _ := get(t, client, e.srv.URL+"/oauth2/authorize")
	require.Equal(t, http.StatusFound, res.StatusCode)

	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	res, body := get(t, client, e.srv.URL+"/oauth2/callback?"+url.Values{
		"state": {state},
		"code":  {"auth-code"},
	}.Encode())
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "edukit:authorized")
}
