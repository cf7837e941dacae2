package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 2

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// UploadURLDuration is how long a presigned upload stays valid.
	UploadURLDuration = 5 * time.Minute

	// DownloadURLDuration is how long a resolved avatar URL stays valid.
	DownloadURLDuration = time.Hour

	// AvatarKeyPrefix is the folder of every avatar object.
	AvatarKeyPrefix = "avatars/"
)

// AllowedMIMETypes defines the set of permitted avatar image types.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateFileSize checks if the provided file size is within acceptable limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAvatarSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that mimeType is allowed and matches the extension of fileName.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[strings.ToLower(filepath.Ext(fileName))]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// Upload is a presigned avatar upload handed to the browser.
type Upload struct {
	URL       string    `json:"uploadUrl"`
	Key       string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Avatars manages avatar objects of users.
type Avatars struct {
	store  StorageService
	now    func() time.Time
	logger zerolog.Logger
}

// NewAvatars wraps store.
func NewAvatars(store StorageService) *Avatars {
	return &Avatars{
		store:  store,
		now:    time.Now,
		logger: logx.Component("Avatars"),
	}
}

// KeyPrefix is the folder owned by userID.
func KeyPrefix(userID string) string {
	return AvatarKeyPrefix + userID + "/"
}

// PresignUpload validates the file and signs an upload into userID's folder.
func (a *Avatars) PresignUpload(ctx context.Context, userID, fileName, mimeType string, size int64) (*Upload, *errs.CustomError) {
	if err := ValidateFileSize(size); err != nil {
		return nil, err
	}
	if err := ValidateFileType(fileName, mimeType); err != nil {
		return nil, err
	}

	key := KeyPrefix(userID) + uuid.NewString() + strings.ToLower(filepath.Ext(fileName))

	url, err := a.store.PresignUpload(ctx, key, strings.ToLower(mimeType), size, UploadURLDuration)
	if err != nil {
		return nil, errs.NewError(errs.ErrFileStorageFailed)
	}

	return &Upload{URL: url, Key: key, ExpiresAt: a.now().Add(UploadURLDuration)}, nil
}

// Confirm checks that key belongs to userID and holds an acceptable image.
func (a *Avatars) Confirm(ctx context.Context, userID, key string) *errs.CustomError {
	if !strings.HasPrefix(key, KeyPrefix(userID)) || strings.Contains(key, "..") {
		return errs.NewError(errs.ErrInvalidParams)
	}

	info, err := a.store.Stat(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if err != nil {
		return errs.NewError(errs.ErrFileStorageFailed)
	}

	if verr := ValidateFileSize(info.Size); verr != nil {
		return verr
	}
	if _, ok := AllowedMIMETypes[strings.ToLower(info.ContentType)]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}
	return nil
}

// Replace removes the previous avatar object of userID. Absolute URLs and keys outside the
// user's folder are left alone; failures are logged only.
func (a *Avatars) Replace(ctx context.Context, userID, previous string) {
	if previous == "" || !strings.HasPrefix(previous, KeyPrefix(userID)) {
		return
	}
	if err := a.store.Delete(ctx, previous); err != nil {
		a.logger.Warn().Err(err).Str("key", previous).Msg("Failed to delete replaced avatar.")
	}
}

// ResolveAvatar signs a download of key. It satisfies directory.AvatarResolver.
func (a *Avatars) ResolveAvatar(ctx context.Context, key string) (string, error) {
	if !strings.HasPrefix(key, AvatarKeyPrefix) {
		return "", fmt.Errorf("not an avatar key: %q", key)
	}
	return a.store.PresignDownload(ctx, key, DownloadURLDuration)
}
