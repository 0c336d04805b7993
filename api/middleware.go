package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aura-site/api/models"
	"github.com/aura-site/api/ratelimit"
)

const requestIDHeader = "X-Request-ID"

func handleCors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Access-Control-Allow-Credentials, Access-Control-Allow-Origin, Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			return
		}
		h.ServeHTTP(w, r)
	}
}

// getOperatorFromJWT reads the operator claims from the access token cookie
func (app *Application) getOperatorFromJWT(r *http.Request) (*models.JWTClaims, error) {
	cookie, err := r.Cookie(models.JWT.ACCESS_COOKIE_NAME)
	if err != nil {
		return nil, errors.New("no JWT cookie found")
	}

	return models.ValidateJWTToken(cookie.Value, app.Config.JwtSecret)
}

// authenticate that the request carries a valid operator token
func (app *Application) authenticate(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := app.getOperatorFromJWT(r)
		if err != nil {
			app.invalidAuthorization(w, r, err)
			return
		}

		app.Logger.Debug("operator request",
			"operator_id", claims.OperatorID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		h.ServeHTTP(w, r)
	}
}

// rateLimit rejects callers whose IP exceeds limiter. A nil limiter allows
// everything.
func (app *Application) rateLimit(limiter *ratelimit.KeyedRateLimiter, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil {
			h.ServeHTTP(w, r)
			return
		}

		key := getClientIP(r, app.Config.TrustProxyHeaders)
		if !limiter.Allow(key) {
			app.Logger.Warn("rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			app.tooManyRequests(w, r)
			return
		}
		h.ServeHTTP(w, r)
	}
}

// getClientIP extracts the client IP from the request. X-Forwarded-For and
// X-Real-IP are client-controlled unless a proxy overwrites them, so they are
// only read when trustProxy is set.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// First entry of X-Forwarded-For is the client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for i := 0; i < len(xff); i++ {
				if xff[i] == ',' {
					return xff[:i]
				}
			}
			return xff
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	// Strip the port.
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// logRequests tags each request with an id and logs its outcome.
func (app *Application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		app.Logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
