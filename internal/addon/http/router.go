package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusware/edukit/internal/addon/http/views"
	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/httpx"
	"github.com/campusware/edukit/pkg/slogx"

	_ "github.com/campusware/edukit/api/addon" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	renderer     *Renderer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	SessionService    *service.SessionService
	CredentialService *service.CredentialService
	LaunchService     *service.LaunchService
	AttachmentService *service.AttachmentService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		renderer:     NewRenderer(views.Templates()),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLaunch()
	r.registerOAuth2()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.Handle("GET /static/", http.StripPrefix("/static/",
		http.FileServerFS(views.Static())))

	r.Mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		r.renderer.Render(w, req, http.StatusOK, "index.html", nil)
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			EduKit Add-on Service API
//	@version		0.1.0
//	@description	Companion service for learning-platform add-on iframes: OAuth2 credential
//	@description	lifecycle, verified launch contexts, per-attachment state, and grade passback.
//
//	@contact.name	Campusware Team
//	@contact.url	https://github.com/campusware/edukit
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLaunch() {
	pages := &LaunchPages{
		Renderer:    r.renderer,
		Launch:      r.LaunchService,
		Attachments: r.AttachmentService,
	}

	withSession := WithSession(r.SessionService)

	// Launch views carry a lenient limit; the host opens them on every
	// iframe load.
	view := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h,
			withSession,
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}
	r.Mux.Handle("GET /addon/discovery", view(pages.HandleDiscovery))
	r.Mux.Handle("GET /addon/teacher-view", view(pages.HandleTeacherView))
	r.Mux.Handle("GET /addon/student-view", view(pages.HandleStudentView))
	r.Mux.Handle("GET /addon/review", view(pages.HandleReview))

	// Mutations get a moderate limit keyed on the session cookie.
	r.Mux.Handle("POST /addon/attachments",
		httpx.Chain(http.HandlerFunc(pages.HandleSaveAttachment),
			withSession,
			httpx.RateLimitByCookie(httpx.ModerateLimit, SessionCookie),
		),
	)
	r.Mux.Handle("POST /addon/submissions",
		httpx.Chain(http.HandlerFunc(pages.HandleSubmitResponse),
			withSession,
			httpx.RateLimitByCookie(httpx.ModerateLimit, SessionCookie),
		),
	)
}

func (r *Router) registerOAuth2() {
	h := &OAuthHandler{
		Renderer:    r.renderer,
		Sessions:    r.SessionService,
		Credentials: r.CredentialService,
	}

	withSession := WithSession(r.SessionService)

	// Strict limit on the legs that hit the identity provider.
	r.Mux.Handle("GET /oauth2/authorize",
		httpx.Chain(http.HandlerFunc(h.HandleAuthorize),
			withSession,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /oauth2/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			withSession,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /signout",
		httpx.Chain(http.HandlerFunc(h.HandleSignout),
			withSession,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store, r.startTime, r.buildVersion))
}
