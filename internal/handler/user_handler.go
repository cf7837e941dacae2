package handler

import (
	"net/http"

	"connect/internal/app/directory"
	"connect/internal/pkg/auth/jwt"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/resp"
)

// HandleGetUserProfile returns the signed-in user.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Identity.Account(r.Context(), payload.UserID)
		if err != nil {
			logx.Warn("get_user_profile: account not found", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.resolveUserAvatar(r.Context(), account.User()),
		})
	}
}

// HandleListDirectory returns the colleagues of the signed-in user with defaults applied.
func HandleListDirectory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		profiles, err := deps.Directory.ListProfiles(r.Context(), payload.UserID)
		if err != nil {
			logx.Error(err, "list_directory: provider failed", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"colleagues": directory.Users(r.Context(), profiles, deps.avatarResolver()),
		})
	}
}
