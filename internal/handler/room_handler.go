/*
Package handler provides HTTP handler functions for room listings and message
moderation.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studychat/internal/app/chat"
	"studychat/internal/pkg/errs"
	"studychat/internal/pkg/logx"
	"studychat/internal/pkg/randx"
	"studychat/internal/pkg/req"
	"studychat/internal/pkg/resp"
)

// HandleListRooms returns the rooms visible to the current user: the default
// room plus every room they are a member of.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		rooms, err := deps.Store.ListRoomsForUser(r.Context(), usr.ID)
		if err != nil {
			logx.Error(err, "failed to list rooms", "user_id", usr.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if rooms == nil {
			rooms = []chat.Room{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"rooms": rooms,
		})
	}
}

type SetMessageStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// HandleSetMessageStatus changes a message's lifecycle status. Restricted to
// moderator and admin roles; messages are never hard-deleted here.
func HandleSetMessageStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usr.Role.IsPrivileged() {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		messageID := chi.URLParam(r, "id")
		if !randx.IsValidID(messageID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input SetMessageStatusInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !chat.IsValidMessageStatus(input.Status) {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageStatusInvalid))
			return
		}

		msg, err := deps.Store.GetMessage(r.Context(), messageID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMessageNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.SetMessageStatus(r.Context(), msg.ID, input.Status); err != nil {
			logx.Error(err, "failed to update message status", "message_id", msg.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Message status changed",
			"message_id", msg.ID,
			"status", input.Status,
			"moderator_id", usr.ID,
		)

		resp.RespondSuccess(w, r, map[string]any{
			"id":     msg.ID,
			"status": input.Status,
		})
	}
}
