/*
Package chat contains the core logic for handling real-time chat rooms, user
connections, and message broadcasting.

This file defines the Coordinator, which owns the mapping from live
connections to rooms and orchestrates create/join/leave/message/disconnect.
Persistent state lives in the Store; the Coordinator holds only the transport
registry (which connection is subscribed to which room) and fans events out.
*/
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"studychat/internal/pkg/errs"
	"studychat/internal/pkg/logx"
	"studychat/internal/pkg/randx"
)

// createNameRetries bounds the collision-probe loop when concurrent creates
// race for the same name.
const createNameRetries = 5

// Coordinator orchestrates all live connections. Store reads and writes are
// suspension points that interleave across connections; nothing here assumes
// atomicity across store calls. Membership mutations are single conditional
// updates at the store, and per-room broadcast order is pinned to persistence
// order by the room's ordering lock.
type Coordinator struct {
	store Store

	// defaultRoomID identifies the permanent room every authenticated
	// connection is joined to at connect time.
	defaultRoomID string

	// mu guards the transport registry: clients, rooms, ordering, and every
	// Client.joined set.
	mu sync.RWMutex

	// clients is the set of all live connections, for global broadcasts.
	clients map[*Client]struct{}

	// rooms maps room id to the connections currently subscribed to it.
	rooms map[string]map[*Client]struct{}

	// ordering holds one mutex per room, held across persist+fan-out so
	// subscribers observe new-message events in persistence order.
	ordering map[string]*sync.Mutex

	logger zerolog.Logger
}

// NewCoordinator constructs a Coordinator over the given store and default room.
func NewCoordinator(store Store, defaultRoomID string) *Coordinator {
	coordinatorLogger := logx.Logger().With().
		Str("component", "coordinator").
		Logger()

	return &Coordinator{
		store:         store,
		defaultRoomID: defaultRoomID,
		clients:       make(map[*Client]struct{}),
		rooms:         make(map[string]map[*Client]struct{}),
		ordering:      make(map[string]*sync.Mutex),
		logger:        coordinatorLogger,
	}
}

// DefaultRoomID returns the id of the permanent default room.
func (co *Coordinator) DefaultRoomID() string {
	return co.defaultRoomID
}

// Connect registers a new connection. Authenticated connections are joined to
// the default room immediately; unauthenticated ones stay registered and
// receive named errors on protected actions.
func (co *Coordinator) Connect(ctx context.Context, c *Client) {
	co.mu.Lock()
	co.clients[c] = struct{}{}
	co.mu.Unlock()

	co.logger.Info().Str("client", c.String()).Msg("Connection registered")

	if c.user != nil {
		co.JoinRoom(ctx, c, co.defaultRoomID)
	}
}

// Disconnect removes the connection from the transport registry. Store
// membership is untouched: the user remains in their rooms across reconnects.
func (co *Coordinator) Disconnect(c *Client) {
	co.mu.Lock()
	defer co.mu.Unlock()

	delete(co.clients, c)
	for roomID := range c.joined {
		if subscribers, ok := co.rooms[roomID]; ok {
			delete(subscribers, c)
			if len(subscribers) == 0 {
				delete(co.rooms, roomID)
			}
		}
	}
	c.joined = make(map[string]struct{})

	co.logger.Info().Str("client", c.String()).Msg("Connection unregistered")
}

// Shutdown closes every live connection. Each connection's pumps observe the
// closed transport and run their normal disconnect cleanup.
func (co *Coordinator) Shutdown() {
	co.mu.RLock()
	targets := make([]*Client, 0, len(co.clients))
	for c := range co.clients {
		targets = append(targets, c)
	}
	co.mu.RUnlock()

	for _, c := range targets {
		c.Close()
	}

	co.logger.Info().Int("connections", len(targets)).Msg("Coordinator shut down")
}

// CreateRoom persists a new ad-hoc room with a collision-free name and the
// creator as sole member, then announces it globally. Creation does not
// subscribe the creator's connection; joining is an explicit second step.
func (co *Coordinator) CreateRoom(ctx context.Context, c *Client, name, description string) {
	if customErr := co.requireAuth(c); customErr != nil {
		c.SendError(customErr)
		return
	}

	name = strings.TrimSpace(name)
	if name == "" {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	room, customErr := co.createWithFreeName(ctx, c, name, description)
	if customErr != nil {
		c.SendError(customErr)
		return
	}

	if _, err := co.store.AddRoomMember(ctx, room.ID, c.user.ID); err != nil {
		co.logger.Error().Err(err).Str("room_id", room.ID).Msg("Failed to add creator to new room")
		c.SendError(errs.NewError(errs.ErrUnknown, err))
		return
	}

	co.logger.Info().
		Str("room_id", room.ID).
		Str("room_name", room.Name).
		Str("client", c.String()).
		Msg("Room created")

	co.broadcastAll(EventRoomCreated, RoomInfoPayload{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		CreatorID:   room.CreatorID,
	})
}

// createWithFreeName probes for a free name, suffixing a counter starting at
// 2, and retries when a concurrent create claims the probed name first.
func (co *Coordinator) createWithFreeName(ctx context.Context, c *Client, name, description string) (*Room, *errs.CustomError) {
	for attempt := 0; attempt < createNameRetries; attempt++ {
		candidate := name
		for i := 2; ; i++ {
			exists, err := co.store.RoomNameExists(ctx, candidate)
			if err != nil {
				return nil, errs.NewError(errs.ErrUnknown, err)
			}
			if !exists {
				break
			}
			candidate = fmt.Sprintf("%s%d", name, i)
		}

		room := &Room{
			ID:          randx.NewID(),
			Name:        candidate,
			Description: description,
			Type:        RoomTypeUser,
			CreatorID:   c.user.ID,
		}

		err := co.store.CreateRoom(ctx, room)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, ErrNameTaken) {
			return nil, errs.NewError(errs.ErrUnknown, err)
		}
		// Lost the race for the probed name; probe again.
	}

	return nil, errs.NewError(errs.ErrUnknown, errors.New("room name probing exhausted"))
}

// JoinRoom adds the user to the room's member set, subscribes the connection,
// replays bounded history, and announces the join. An invalid or absent room
// id falls back to the connection's room hint, then to the default room.
func (co *Coordinator) JoinRoom(ctx context.Context, c *Client, roomID string) {
	if customErr := co.requireAuth(c); customErr != nil {
		c.SendError(customErr)
		return
	}

	roomID = co.resolveJoinTarget(c, roomID)

	room, err := co.store.GetRoomByID(ctx, roomID)
	if err != nil {
		c.SendError(mapStoreError(err))
		return
	}

	// Single conditional update; concurrent joins to the same room both land.
	if _, err := co.store.AddRoomMember(ctx, room.ID, c.user.ID); err != nil {
		c.SendError(errs.NewError(errs.ErrUnknown, err))
		return
	}

	co.subscribe(c, room.ID)

	c.Emit(EventRoomInfo, RoomInfoPayload{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
	})

	// History always comes from the store; there is no server-side cache to
	// drift from durable state.
	history, err := co.store.LastRoomMessages(ctx, room.ID, HistoryLimit)
	if err != nil {
		c.SendError(errs.NewError(errs.ErrUnknown, err))
		return
	}
	if history == nil {
		history = []MessageView{}
	}
	c.Emit(EventPreviousMessages, PreviousMessagesPayload{RoomID: room.ID, Messages: history})

	co.logger.Info().
		Str("room_id", room.ID).
		Str("client", c.String()).
		Msg("Client joined room")

	co.broadcastRoom(room.ID, EventUserJoined, UserEventPayload{
		RoomID: room.ID,
		User:   c.user.Public(),
	})
}

// resolveJoinTarget picks the room a join applies to: the supplied id when
// well-formed, else the handshake hint, else the default room.
func (co *Coordinator) resolveJoinTarget(c *Client, roomID string) string {
	if randx.IsValidID(roomID) {
		return roomID
	}
	if randx.IsValidID(c.roomHint) {
		return c.roomHint
	}
	return co.defaultRoomID
}

// LeaveRoom removes the user from the room's member set, unsubscribes the
// connection, and announces the departure. Leaving the default room is
// rejected. An ad-hoc room left empty is deleted together with its messages.
func (co *Coordinator) LeaveRoom(ctx context.Context, c *Client, roomID string) {
	if customErr := co.requireAuth(c); customErr != nil {
		c.SendError(customErr)
		return
	}

	if !randx.IsValidID(roomID) {
		c.SendError(errs.NewError(errs.ErrInvalidRoomID))
		return
	}

	room, err := co.store.GetRoomByID(ctx, roomID)
	if err != nil {
		c.SendError(mapStoreError(err))
		return
	}

	if room.IsDefault() {
		c.SendError(errs.NewError(errs.ErrCannotLeaveDefaultRoom))
		return
	}

	// Idempotent: removing a non-member is a no-op.
	if _, err := co.store.RemoveRoomMember(ctx, room.ID, c.user.ID); err != nil {
		c.SendError(errs.NewError(errs.ErrUnknown, err))
		return
	}

	co.unsubscribe(c, room.ID)

	co.logger.Info().
		Str("room_id", room.ID).
		Str("client", c.String()).
		Msg("Client left room")

	co.broadcastRoom(room.ID, EventUserLeft, UserEventPayload{
		RoomID: room.ID,
		User:   c.user.Public(),
	})

	co.cleanupIfEmpty(ctx, room)
}

// cleanupIfEmpty deletes an ad-hoc room once its member set is empty and
// announces the removal to every connection.
func (co *Coordinator) cleanupIfEmpty(ctx context.Context, room *Room) {
	if !room.Deletable() {
		return
	}

	count, err := co.store.RoomMemberCount(ctx, room.ID)
	if err != nil {
		co.logger.Error().Err(err).Str("room_id", room.ID).Msg("Failed to count room members for cleanup")
		return
	}
	if count > 0 {
		return
	}

	if err := co.store.DeleteRoomWithMessages(ctx, room.ID); err != nil {
		co.logger.Error().Err(err).Str("room_id", room.ID).Msg("Failed to delete empty room")
		return
	}

	co.dropRoom(room.ID)

	co.logger.Info().Str("room_id", room.ID).Str("room_name", room.Name).Msg("Empty room removed")

	co.broadcastAll(EventRoomRemoved, RoomRemovedPayload{RoomID: room.ID})
}

// PostMessage validates, persists, and broadcasts one chat message. The
// message is durable before any subscriber sees it, and the room's ordering
// lock pins broadcast order to persistence order.
func (co *Coordinator) PostMessage(ctx context.Context, c *Client, roomID, body string) {
	if customErr := co.requireAuth(c); customErr != nil {
		c.SendError(customErr)
		return
	}

	if !randx.IsValidID(roomID) {
		c.SendError(errs.NewError(errs.ErrInvalidRoomID))
		return
	}

	room, err := co.store.GetRoomByID(ctx, roomID)
	if err != nil {
		c.SendError(mapStoreError(err))
		return
	}

	member, err := co.store.IsRoomMember(ctx, room.ID, c.user.ID)
	if err != nil {
		c.SendError(errs.NewError(errs.ErrUnknown, err))
		return
	}
	if !member {
		c.SendError(errs.NewError(errs.ErrNotARoomMember))
		return
	}

	if utf8.RuneCountInString(body) > MaxMessageLength && !c.user.Role.IsPrivileged() {
		c.SendError(errs.NewError(errs.ErrMessageTooLong))
		return
	}

	lock := co.roomOrdering(room.ID)
	lock.Lock()
	defer lock.Unlock()

	msg := &Message{
		ID:       randx.NewID(),
		RoomID:   room.ID,
		AuthorID: c.user.ID,
		Body:     body,
	}

	if err := co.store.InsertMessage(ctx, msg); err != nil {
		c.SendError(errs.NewError(errs.ErrUnknown, err))
		return
	}

	// Fresh display snapshot so the broadcast never shows a stale name or
	// avatar. The message is already durable; a failed lookup falls back to
	// the session's snapshot rather than suppressing the broadcast.
	authorView := c.user.Public()
	if author, err := co.store.GetUserByID(ctx, msg.AuthorID); err == nil {
		authorView = author.Public()
	} else {
		co.logger.Warn().Err(err).Str("author_id", msg.AuthorID).Msg("Fresh author snapshot unavailable")
	}

	co.broadcastRoom(room.ID, EventNewMessage, MessageView{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Body:      msg.Body,
		Author:    authorView,
		CreatedAt: msg.CreatedAt,
	})
}

// requireAuth returns the error for protected actions on unauthenticated
// connections.
func (co *Coordinator) requireAuth(c *Client) *errs.CustomError {
	if c.user == nil {
		return errs.NewError(errs.ErrUnauthenticated)
	}
	return nil
}

// mapStoreError translates store sentinels into the error-event vocabulary.
func mapStoreError(err error) *errs.CustomError {
	if errors.Is(err, ErrNotFound) {
		return errs.NewError(errs.ErrRoomNotFound)
	}
	return errs.NewError(errs.ErrUnknown, err)
}

// subscribe adds the connection to the room's transport channel.
func (co *Coordinator) subscribe(c *Client, roomID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	subscribers, ok := co.rooms[roomID]
	if !ok {
		subscribers = make(map[*Client]struct{})
		co.rooms[roomID] = subscribers
	}
	subscribers[c] = struct{}{}
	c.joined[roomID] = struct{}{}
}

// unsubscribe removes the connection from the room's transport channel.
func (co *Coordinator) unsubscribe(c *Client, roomID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if subscribers, ok := co.rooms[roomID]; ok {
		delete(subscribers, c)
		if len(subscribers) == 0 {
			delete(co.rooms, roomID)
		}
	}
	delete(c.joined, roomID)
}

// dropRoom clears the transport channel and ordering lock for a deleted room.
func (co *Coordinator) dropRoom(roomID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	for c := range co.rooms[roomID] {
		delete(c.joined, roomID)
	}
	delete(co.rooms, roomID)
	delete(co.ordering, roomID)
}

// roomOrdering returns the per-room lock held across persist+fan-out.
func (co *Coordinator) roomOrdering(roomID string) *sync.Mutex {
	co.mu.Lock()
	defer co.mu.Unlock()

	lock, ok := co.ordering[roomID]
	if !ok {
		lock = &sync.Mutex{}
		co.ordering[roomID] = lock
	}
	return lock
}

// broadcastRoom queues an event on every connection currently subscribed to
// the room. Delivery reaches exactly the joined set; no cross-room leakage.
func (co *Coordinator) broadcastRoom(roomID, event string, payload any) {
	co.mu.RLock()
	targets := make([]*Client, 0, len(co.rooms[roomID]))
	for c := range co.rooms[roomID] {
		targets = append(targets, c)
	}
	co.mu.RUnlock()

	for _, c := range targets {
		c.Emit(event, payload)
	}
}

// broadcastAll queues an event on every live connection.
func (co *Coordinator) broadcastAll(event string, payload any) {
	co.mu.RLock()
	targets := make([]*Client, 0, len(co.clients))
	for c := range co.clients {
		targets = append(targets, c)
	}
	co.mu.RUnlock()

	for _, c := range targets {
		c.Emit(event, payload)
	}
}
