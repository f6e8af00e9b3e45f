package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/auth"
	"github.com/prepgrind/theory-platform/internal/config"
	"github.com/prepgrind/theory-platform/internal/question"
	"github.com/prepgrind/theory-platform/internal/submission"
)

// Handlers bundles the HTTP surfaces the server mounts.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	Questions   *question.HTTPHandlers
	Submissions *submission.HTTPHandlers
	FeedWS      http.HandlerFunc
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if h.Auth != nil {
		mux.HandleFunc("POST /v1/auth/register", h.Auth.Register)
		mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)
		mux.HandleFunc("POST /v1/auth/refresh", h.Auth.RefreshToken)
		mux.HandleFunc("POST /v1/auth/forgot-password", h.Auth.ForgotPassword)
		mux.HandleFunc("POST /v1/auth/reset-password", h.Auth.ResetPassword)
		mux.HandleFunc("GET /v1/oauth/{provider}/start", h.Auth.OAuthStart)
		mux.HandleFunc("GET /v1/oauth/{provider}/callback", h.Auth.OAuthCallback)
		mux.Handle("GET /v1/users/me", auth.RequireAuth(http.HandlerFunc(h.Auth.GetMe)))
	}

	if h.Questions != nil {
		adminOnly := auth.RequireRole(auth.RoleAdmin)

		mux.HandleFunc("GET /v1/questions", h.Questions.List)
		mux.HandleFunc("GET /v1/questions/{key}", h.Questions.Get)
		mux.Handle("POST /v1/questions/{key}/evaluate", auth.RequireAuth(http.HandlerFunc(h.Questions.Evaluate)))
		mux.Handle("POST /v1/questions", adminOnly(http.HandlerFunc(h.Questions.Create)))
		mux.Handle("PUT /v1/questions/{id}", adminOnly(http.HandlerFunc(h.Questions.Update)))
		mux.Handle("DELETE /v1/questions/{id}", adminOnly(http.HandlerFunc(h.Questions.Delete)))
		mux.Handle("POST /v1/questions/{id}/vote", auth.RequireAuth(http.HandlerFunc(h.Questions.Vote)))
	}

	if h.Submissions != nil {
		mux.Handle("POST /v1/questions/{id}/submissions", auth.RequireAuth(http.HandlerFunc(h.Submissions.Submit)))
		mux.Handle("GET /v1/submissions", auth.RequireAuth(http.HandlerFunc(h.Submissions.List)))
		mux.Handle("GET /v1/submissions/{id}", auth.RequireAuth(http.HandlerFunc(h.Submissions.Get)))
	}

	if h.FeedWS != nil {
		mux.Handle("/ws/submissions", auth.RequireAuth(h.FeedWS))
	}

	var handler http.Handler = mux
	handler = auth.Middleware(authSvc, logger)(handler)
	handler = corsMiddleware(cfg.CORS)(handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

// corsMiddleware applies the configured CORS policy and short-circuits
// preflight requests.
func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowedOrigins[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowedOrigins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
	}
	if redis != nil {
		if err := redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
