package handler

import (
	"net/http"

	"studychat/internal/app/chat"
	"studychat/internal/app/db"
	"studychat/internal/app/identity"
	"studychat/internal/app/storage"
	"studychat/internal/app/user"
	"studychat/internal/configs"
	"studychat/internal/pkg/auth/jwt"
	"studychat/internal/pkg/errs"
)

type AppDeps struct {
	Coordinator *chat.Coordinator
	Config      *configs.AppConfig
	Store       *db.Store
	Resolver    *identity.Resolver
	Storage     storage.Service
}

// currentUser loads the account behind the request's identity payload.
// Returns a CustomError suited for direct RespondError use.
func (d *AppDeps) currentUser(r *http.Request) (*user.User, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return nil, errs.NewError(errs.ErrUnauthenticated)
	}

	usr, err := d.Store.GetUserByID(r.Context(), payload.UserID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if !usr.IsActive() {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	return usr, nil
}
