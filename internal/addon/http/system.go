package http

import (
	"net/http"
	"time"

	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/httpx"
)

// HealthResponse is the body served by the health probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning basic service health, uptime, and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe verifying the database connection. 503 when the store cannot be reached.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store, startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		if err := st.Ping(r.Context()); err != nil {
			res.Status = "unavailable"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, res)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}
