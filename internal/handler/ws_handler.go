/*
Package handler provides the HTTP handler function for WebSocket connection
upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, resolving the caller's identity from the handshake credential,
upgrading the HTTP connection to WebSocket, and initiating the client
lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"studychat/internal/app/chat"
	"studychat/internal/pkg/auth/jwt"
	"studychat/internal/pkg/errs"
	"studychat/internal/pkg/limiter"
	"studychat/internal/pkg/logx"
	"studychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection
// requests. Identity resolution happens once, before the upgrade; a failed
// resolution still yields a connection, restricted to receiving named errors
// on protected actions.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		credential := jwt.CredentialFromRequest(r)
		usr, resolveErr := deps.Resolver.Resolve(r.Context(), credential)
		if resolveErr != nil {
			logx.Info("WebSocket handshake without valid identity", "code", resolveErr.Code)
			usr = nil
		}

		roomHint := r.URL.Query().Get("room")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Coordinator, conn, usr, roomHint)

		go client.WritePump()

		logx.Info("WebSocket connection established", "client", client.String())

		deps.Coordinator.Connect(r.Context(), client)

		client.ReadPump(r.Context())
	}
}
