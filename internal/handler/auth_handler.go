/*
Package handler provides the HTTP handlers of the Acertax Connect API.

This file covers authentication: the proof-of-work gate, password login and logout.
*/
package handler

import (
	"net/http"
	"time"

	"connect/internal/app/session"
	"connect/internal/app/user"
	"connect/internal/pkg/auth/jwt"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/req"
	"connect/internal/pkg/resp"
)

// HandlePowChallenge issues a proof-of-work nonce.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.Enabled() {
			resp.RespondSuccess(w, r, map[string]any{"enabled": false, "difficulty": 0})
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"enabled":    true,
			"nonce":      deps.Pow.Challenge(),
			"difficulty": deps.Pow.Difficulty(),
		})
	}
}

type PowVerifyInput struct {
	Nonce   string `json:"nonce" validate:"required"`
	Counter string `json:"counter" validate:"required"`
}

// HandlePowVerify trades a solved challenge for a single-use proof token.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		var input PowVerifyInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := deps.Pow.Verify(input.Nonce, input.Counter)
		if err != nil {
			logx.Info("PoW verification failed", "reason", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"powToken": token})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

// HandleLogin signs an employee in with email and password.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.Redeem(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		client := deps.Identity.NewClient(r.Context(), "")
		defer client.Close()

		controller := session.NewController(client, session.Options{
			AllowedDomain: deps.Config.AllowedEmailDomain,
			LogoutPolicy:  deps.Config.LogoutPolicy,
		})
		defer controller.Close()

		if err := controller.Login(r.Context(), input.Email, input.Password); err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		current, err := client.CurrentSession(r.Context())
		if err != nil || current == nil {
			logx.Error(err, "login: session vanished right after sign-in")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		u, _ := controller.User()
		resp.RespondSuccess(w, r, LoginResponse{
			Token:     current.Token,
			ExpiresAt: current.ExpiresAt,
			User:      deps.resolveUserAvatar(r.Context(), u),
		})
	}
}

// HandleLogout revokes the session of the bearer token. Connected workspaces of that
// session are notified and closed.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Identity.Revoke(r.Context(), payload.SessionID()); err != nil {
			logx.Error(err, "logout: revoke failed", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrLogoutFailed))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
