/*
Package handler provides HTTP handler functions for profile management and
avatar storage.
*/
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"studychat/internal/app/storage"
	"studychat/internal/pkg/errs"
	"studychat/internal/pkg/logx"
	"studychat/internal/pkg/req"
	"studychat/internal/pkg/resp"
)

const maxDisplayNameLength = 30

// HandleGetUserProfile returns the current authenticated user's profile.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": profileData(usr),
		})
	}
}

type UpdateProfileInput struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	ProfilePic  string `json:"profilePic"`
}

// HandleUpdateUserProfile updates the display name, bio, and avatar key of
// the current user. A replaced avatar object is deleted in the background.
func HandleUpdateUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		displayName := strings.TrimSpace(input.DisplayName)
		if displayName == "" || utf8.RuneCountInString(displayName) > maxDisplayNameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		// Avatar references are object keys issued by the presign endpoint,
		// never arbitrary URLs. An absent key keeps the current avatar.
		if input.ProfilePic != "" && !strings.HasPrefix(input.ProfilePic, "avatars/"+usr.ID+"/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		newPic := input.ProfilePic
		if newPic == "" {
			newPic = usr.ProfilePic
		}

		updated, err := deps.Store.UpdateUserProfile(r.Context(), usr.ID, displayName, input.Bio, newPic)
		if err != nil {
			logx.Error(err, "failed to update user profile", "user_id", usr.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		oldKey := usr.ProfilePic
		if input.ProfilePic != "" && oldKey != "" && oldKey != input.ProfilePic {
			go func(key string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.Storage.Delete(ctx, key)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": profileData(updated),
		})
	}
}

type PresignAvatarInput struct {
	MimeType string `json:"mimeType" validate:"required"`
	FileSize int64  `json:"fileSize" validate:"required,gt=0"`
}

// HandlePresignAvatarURL generates a time-limited, pre-signed URL for
// uploading the current user's avatar directly to object storage.
func HandlePresignAvatarURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !storage.IsAllowedAvatarType(input.MimeType) {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTypeInvalid))
			return
		}

		if input.FileSize > storage.MaxAvatarSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge))
			return
		}

		fileKey := storage.AvatarKey(usr.ID, input.MimeType)

		url, err := deps.Storage.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			storage.UploadURLTTL,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"fileKey":      fileKey,
		})
	}
}

// HandleAvatarDownload redirects to a time-limited, pre-signed URL for the
// requested avatar key.
func HandleAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := deps.currentUser(r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fileKey := r.URL.Query().Get("k")
		if !strings.HasPrefix(fileKey, "avatars/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), fileKey, storage.DownloadURLTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
