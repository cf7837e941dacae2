package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"connect/internal/app/workspace"
	"connect/internal/pkg/auth/jwt"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/limiter"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/resp"
)

// HandleWebSocket authenticates the token carried by the upgrade request and runs a
// workspace over the resulting connection.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := jwt.RequestToken(r)
		payload, err := deps.Identity.Verify(r.Context(), token)
		if err != nil {
			logx.Info("WebSocket connection rejected: no live session.")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket connection established", "user_id", payload.UserID)

		workspace.Serve(r.Context(), conn, deps.WorkspaceDeps(), token)

		logx.Info("WebSocket connection closed", "user_id", payload.UserID)
	}
}
