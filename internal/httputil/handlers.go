package httputil

import (
	"net/http"
)

// HealthHandler is the liveness probe.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// ReadinessHandler reports 503 while check fails.
func ReadinessHandler(check func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				RespondProblem(w, r, http.StatusServiceUnavailable, "database is not reachable")
				return
			}
		}
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}

// VersionHandler returns build information.
func VersionHandler(version, commit, buildDate string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{
			"version":   version,
			"commit":    commit,
			"buildDate": buildDate,
		})
	})
}

// OpenAPIHandler serves the embedded OpenAPI document.
func OpenAPIHandler(spec []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(spec) == 0 {
			RespondProblem(w, r, http.StatusNotFound, "OpenAPI document is not available")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(spec)
	})
}
