/*
Package handler provides the HTTP handlers and routing setup for the Acertax Connect server.

This file defines the main Router, applying middleware like logging, CORS and IP-based rate
limiting before delegating requests to the API and WebSocket handlers.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"connect/internal/pkg/auth/jwt"
	"connect/internal/pkg/limiter"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/resp"
)

const (
	LoginRate    = 0.2
	LoginBurst   = 5
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router sets up the HTTP routing table. Background limiter sweeps stop when ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	loginLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(LoginRate), LoginBurst)
	connectLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Acertax Connect",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Identity.Verify))

		api.Route("/auth", func(auth chi.Router) {
			auth.Get("/challenge", HandlePowChallenge(deps))
			auth.Post("/verify", HandlePowVerify(deps))
			auth.With(loginLimiter.Middleware).Post("/login", HandleLogin(deps))
			auth.Post("/logout", HandleLogout(deps))
		})

		api.Route("/user", func(user chi.Router) {
			user.Get("/profile", HandleGetUserProfile(deps))
			user.Post("/avatar/presign", HandlePresignAvatar(deps))
			user.Post("/avatar", HandleUpdateAvatar(deps))
		})

		api.Get("/directory", HandleListDirectory(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
