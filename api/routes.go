package api

import (
	"net/http"
	"regexp"
	"strings"
)

var localhostPattern = regexp.MustCompile(`^localhost:\d+$`)

func cleanOrigin(origin string) string {
	cleanedOrigin := strings.TrimPrefix(origin, "https://")
	cleanedOrigin = strings.TrimPrefix(cleanedOrigin, "http://")
	if idx := strings.Index(cleanedOrigin, "/"); idx != -1 {
		cleanedOrigin = cleanedOrigin[:idx]
	}
	return cleanedOrigin
}

func isAllowedOrigin(origin string, allowedOrigins []string, devMode bool) bool {
	cleanedRequest := cleanOrigin(origin)

	// Allow localhost for development
	if devMode && localhostPattern.MatchString(cleanedRequest) {
		return true
	}

	for _, allowed := range allowedOrigins {
		if cleanOrigin(allowed) == cleanedRequest {
			return true
		}
	}

	return false
}

func wrapMuxWithCorsAndOrigins(mux *http.ServeMux, app Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == "" {
			origin = r.Header.Get("Referer")
		}

		if origin == "" || isAllowedOrigin(origin, app.Config.AllowedOrigins, app.Config.DevMode) {
			handleCors(mux.ServeHTTP)(w, r)
			return
		}

		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("origin not allowed: " + cleanOrigin(origin)))
	})
}

func (app Application) BuildRoutes(mux *http.ServeMux) *http.ServeMux {
	finalMux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("/", app.home)
	mux.HandleFunc("/v1/sites", app.rateLimit(app.CreateLimiter, app.createSite))
	mux.HandleFunc("/v1/sites/recent", app.getRecentSites)
	mux.HandleFunc("/v1/sites/{username}", app.getSite)
	mux.HandleFunc("/v1/leaderboard", app.getLeaderboard)
	mux.HandleFunc("/v1/featured", app.getFeaturedSite)
	mux.HandleFunc("/v1/components/{id}/votes", app.componentVotes)
	mux.HandleFunc("/v1/auth/login", app.login)

	// Operator endpoints
	mux.HandleFunc("/v1/palette/preview", app.authenticate(app.previewPalette))
	mux.HandleFunc("/v1/admin/sites/{username}", app.authenticate(app.deleteSite))
	mux.HandleFunc("/v1/admin/featured/generate", app.authenticate(app.generateFeaturedSite))

	// Wrap entire mux with CORS and origins check
	finalMux.Handle("/", app.logRequests(wrapMuxWithCorsAndOrigins(mux, app)))

	return finalMux
}
