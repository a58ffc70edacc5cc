package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/pkg/slogx"
)

// OAuthHandler serves the interactive authorization legs: the redirect to
// the provider, the callback, and sign-out.
type OAuthHandler struct {
	Renderer    *Renderer
	Sessions    *service.SessionService
	Credentials *service.CredentialService
}

// HandleAuthorize godoc
//
//	@Summary		Begin Authorization
//	@Description	Stores a single-use anti-forgery state for the session and redirects to the identity provider's consent screen.
//	@Description	Opened in a popup from the iframe's sign-in button.
//	@Tags			OAuth2
//	@Param			login_hint	query	string	false	"Provider user ID to pre-select the account"
//	@Success		302	"Redirect to the provider"
//	@Router			/oauth2/authorize [get].
func (h *OAuthHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := sessionFrom(ctx)
	if !ok {
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "No session.")
		return
	}

	authURL, err := h.Credentials.BeginAuthorization(ctx, sess.ID, r.URL.Query().Get("login_hint"))
	if err != nil {
		slogx.FromContext(ctx).Error("begin authorization failed", "error", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not start sign-in.")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Authorization Callback
//	@Description	Completes the authorization-code flow: validates the single-use state, exchanges the code, and stores the credential.
//	@Description	On success renders the closer page, which notifies the opener iframe and closes the popup.
//	@Tags			OAuth2
//	@Param			state	query	string	true	"Anti-forgery state issued at authorization start"
//	@Param			code	query	string	false	"Authorization code"
//	@Param			error	query	string	false	"Provider error, e.g. access_denied"
//	@Success		200	"Closer page"
//	@Failure		403	"State mismatch or consent denied"
//	@Router			/oauth2/callback [get].
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	sess, ok := sessionFrom(ctx)
	if !ok {
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "No session.")
		return
	}

	if provErr := q.Get("error"); provErr != "" {
		slogx.FromContext(ctx).Warn("provider returned authorization error", "error", provErr)
		h.Renderer.RenderError(w, r, http.StatusForbidden,
			"Sign-in was cancelled. Close this window and try again.")
		return
	}

	_, err := h.Credentials.CompleteAuthorization(ctx, sess.ID, q.Get("state"), q.Get("code"))
	switch {
	case err == nil:
		h.Renderer.Render(w, r, http.StatusOK, "closer.html", nil)
	case errors.Is(err, service.ErrStateMismatch):
		h.Renderer.RenderError(w, r, http.StatusForbidden,
			"This sign-in attempt is no longer valid. Close this window and try again.")
	case errors.Is(err, service.ErrExchangeFailed):
		h.Renderer.RenderError(w, r, http.StatusBadGateway,
			"The identity provider rejected the sign-in. Close this window and try again.")
	default:
		slogx.FromContext(ctx).Error("authorization callback failed", "error", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Sign-in failed.")
	}
}

// HandleSignout godoc
//
//	@Summary		Sign Out
//	@Description	Revokes the session's tokens at the provider, deletes the local credential and session, and clears the cookie.
//	@Tags			OAuth2
//	@Success		200	"Acknowledgement page"
//	@Router			/signout [post].
func (h *OAuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if sess, ok := sessionFrom(ctx); ok {
		if err := h.Credentials.Revoke(ctx, sess); err != nil {
			log.Warn("credential revocation failed", "error", err)
		}
		if err := h.Sessions.Destroy(ctx, sess.ID); err != nil {
			log.Warn("session destroy failed", "error", err)
		}
	}

	clearSessionCookie(w)
	h.Renderer.Render(w, r, http.StatusOK, "ack.html", map[string]any{
		"Title":   "Signed out",
		"Message": "You have been signed out. You can close this view.",
	})
}

// authorizePageURL builds the popup target carrying the login hint through
// to the provider.
func authorizePageURL(loginHint string) string {
	if loginHint == "" {
		return "/oauth2/authorize"
	}
	return "/oauth2/authorize?" + url.Values{"login_hint": {loginHint}}.Encode()
}
