package handler

import (
	"net/http"

	"connect/internal/pkg/auth/jwt"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/req"
	"connect/internal/pkg/resp"
)

// PresignAvatarInput describes the avatar the browser is about to upload.
type PresignAvatarInput struct {
	FileName string `json:"fileName" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
	FileSize int64  `json:"fileSize" validate:"required,gt=0"`
}

// HandlePresignAvatar issues a presigned upload URL inside the user's avatar folder.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		upload, customErr := deps.Avatars.PresignUpload(r.Context(), payload.UserID, input.FileName, input.MimeType, input.FileSize)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, upload)
	}
}

// UpdateAvatarInput names an uploaded avatar object.
type UpdateAvatarInput struct {
	FileKey string `json:"fileKey" validate:"required"`
}

// HandleUpdateAvatar makes an uploaded object the user's avatar and removes the previous one.
func HandleUpdateAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		var input UpdateAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.Avatars.Confirm(r.Context(), payload.UserID, input.FileKey); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Identity.Account(r.Context(), payload.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Identity.UpdateAvatar(r.Context(), payload.UserID, input.FileKey); err != nil {
			logx.Error(err, "update_avatar: store failed", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if account.AvatarURL != input.FileKey {
			deps.Avatars.Replace(r.Context(), payload.UserID, account.AvatarURL)
		}

		account.AvatarURL = input.FileKey
		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.resolveUserAvatar(r.Context(), account.User()),
		})
	}
}
