/*
Package handler provides HTTP handler functions for account registration,
login, and credential management.
*/
package handler

import (
	"net/http"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"studychat/internal/app/db"
	"studychat/internal/app/user"
	"studychat/internal/pkg/auth/jwt"
	"studychat/internal/pkg/errs"
	"studychat/internal/pkg/logx"
	"studychat/internal/pkg/randx"
	"studychat/internal/pkg/req"
	"studychat/internal/pkg/resp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)
)

// setCredentialCookie stores the signed token where the WebSocket handshake
// reads it from.
func setCredentialCookie(w http.ResponseWriter, deps *AppDeps, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwt.CredentialCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwt.IdentityExpiration.Seconds()),
		HttpOnly: true,
		Secure:   !deps.Config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

// profileData shapes the account for HTTP responses.
func profileData(u *user.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"displayName": u.DisplayName,
		"role":        u.Role,
		"profilePic":  u.ProfilePic,
		"bio":         u.Bio,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new account with a generated display name and
// issues a signed credential.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		usr := &user.User{
			ID:            randx.NewID(),
			Username:      input.Username,
			Email:         input.Email,
			PasswordHash:  string(hashedPassword),
			Role:          user.RoleUser,
			AccountStatus: user.StatusActive,
		}

		// Generated display names can collide; retry with a fresh one.
		var insertErr error
		for attempt := 0; attempt < 3; attempt++ {
			displayName, err := randx.DisplayName()
			if err != nil {
				displayName = "User" + input.Username
			}
			usr.DisplayName = displayName

			insertErr = deps.Store.CreateUser(r.Context(), usr)
			if insertErr == nil || db.ViolatedConstraint(insertErr) != "users_display_name_key" {
				break
			}
		}

		if insertErr != nil {
			if db.IsUniqueViolation(insertErr) {
				logx.Warn("registration conflict: account already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(insertErr, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		tokenString, err := jwt.GenerateToken(usr.ID, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after registration")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setCredentialCookie(w, deps, tokenString)

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"user":  profileData(usr),
		})
	}
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin verifies user credentials and issues a signed credential.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		usr, err := deps.Store.GetUserByUsername(r.Context(), input.Username)
		if err != nil {
			logx.Warn("login: user fetch failed", "username", input.Username, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !usr.IsActive() {
			logx.Warn("login: account not active", "username", input.Username, "status", usr.AccountStatus)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := jwt.GenerateToken(usr.ID, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setCredentialCookie(w, deps, token)

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  profileData(usr),
		})
	}
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// HandleChangePassword rotates the account's password after checking the
// current one, and issues a fresh credential.
func HandleChangePassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input ChangePasswordInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		passwordLen := utf8.RuneCountInString(input.NewPassword)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(input.OldPassword)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrOldPasswordInvalid))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.UpdateUserPassword(r.Context(), usr.ID, string(hashedPassword)); err != nil {
			logx.Error(err, "failed to update user password in database", "user_id", usr.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		newToken, err := jwt.GenerateToken(usr.ID, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after password change", "user_id", usr.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setCredentialCookie(w, deps, newToken)

		resp.RespondSuccess(w, r, map[string]any{
			"token": newToken,
		})
	}
}
