package chat

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/app/user"
	"studychat/internal/pkg/randx"
)

func TestConnectAutoJoinsDefaultRoom(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)

	c := connect(t, co, alice)

	info := mustFrame(t, c, EventRoomInfo)
	var roomInfo RoomInfoPayload
	require.NoError(t, json.Unmarshal(info.Payload, &roomInfo))
	assert.Equal(t, defaultRoom.ID, roomInfo.ID)
	assert.Equal(t, "General", roomInfo.Name)

	history := mustFrame(t, c, EventPreviousMessages)
	var prev PreviousMessagesPayload
	require.NoError(t, json.Unmarshal(history.Payload, &prev))
	assert.Equal(t, defaultRoom.ID, prev.RoomID)
	assert.Empty(t, prev.Messages)

	joined := mustFrame(t, c, EventUserJoined)
	var ev UserEventPayload
	require.NoError(t, json.Unmarshal(joined.Payload, &ev))
	assert.Equal(t, alice.ID, ev.User.ID)

	assert.Equal(t, 1, store.memberCount(defaultRoom.ID))
}

func TestUnauthenticatedConnectionGetsNamedErrors(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	ctx := context.Background()

	c := connect(t, co, nil)
	noFrame(t, c, EventRoomInfo)

	co.PostMessage(ctx, c, defaultRoom.ID, "hello")
	mustFrame(t, c, "chat-noauth-error")
	assert.Zero(t, store.messageCount(defaultRoom.ID))

	co.CreateRoom(ctx, c, "Study", "")
	mustFrame(t, c, "chat-noauth-error")
	assert.Nil(t, store.roomByName("Study"))

	co.JoinRoom(ctx, c, defaultRoom.ID)
	mustFrame(t, c, "chat-noauth-error")
	assert.Zero(t, store.memberCount(defaultRoom.ID))

	co.LeaveRoom(ctx, c, defaultRoom.ID)
	mustFrame(t, c, "chat-noauth-error")
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	c := connect(t, co, alice)
	drain(c)

	co.JoinRoom(context.Background(), c, defaultRoom.ID)

	mustFrame(t, c, EventRoomInfo)
	mustFrame(t, c, EventPreviousMessages)
	mustFrame(t, c, EventUserJoined)
	assert.Equal(t, 1, store.memberCount(defaultRoom.ID))
}

func TestJoinRoomFallsBackToHintThenDefault(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	studyRoom := store.addRoom("Study Group", RoomTypeGroup)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)

	hinted := NewClient(co, nil, alice, studyRoom.ID)
	co.Connect(context.Background(), hinted)
	drain(hinted)

	// Malformed id on a hinted connection lands in the hinted room.
	co.JoinRoom(context.Background(), hinted, "not-a-room-id")
	info := mustFrame(t, hinted, EventRoomInfo)
	var roomInfo RoomInfoPayload
	require.NoError(t, json.Unmarshal(info.Payload, &roomInfo))
	assert.Equal(t, studyRoom.ID, roomInfo.ID)

	// Without a hint the fallback is the default room.
	plain := connect(t, co, bob)
	drain(plain)
	co.JoinRoom(context.Background(), plain, "")
	info = mustFrame(t, plain, EventRoomInfo)
	require.NoError(t, json.Unmarshal(info.Payload, &roomInfo))
	assert.Equal(t, defaultRoom.ID, roomInfo.ID)
}

func TestJoinUnknownRoom(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	c := connect(t, co, alice)
	drain(c)

	co.JoinRoom(context.Background(), c, randx.NewID())
	mustFrame(t, c, "chat-room-notfound-error")
}

func TestCreateRoomSuffixesCollidingNames(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cb := connect(t, co, bob)
	drain(ca)
	drain(cb)

	co.CreateRoom(ctx, ca, "Study", "midterm prep")
	co.CreateRoom(ctx, cb, "Study", "")
	co.CreateRoom(ctx, ca, "Study", "")

	require.NotNil(t, store.roomByName("Study"))
	require.NotNil(t, store.roomByName("Study2"))
	require.NotNil(t, store.roomByName("Study3"))

	first := store.roomByName("Study")
	assert.Equal(t, RoomTypeUser, first.Type)
	assert.Equal(t, alice.ID, first.CreatorID)
	assert.Equal(t, 1, store.memberCount(first.ID))

	// Every connection hears about every new room.
	for i := 0; i < 3; i++ {
		mustFrame(t, cb, EventRoomCreated)
	}

	// Creation subscribes nobody; joining is an explicit step.
	co.mu.RLock()
	_, subscribed := co.rooms[first.ID]
	co.mu.RUnlock()
	assert.False(t, subscribed)
}

func TestCreateRoomRejectsBlankName(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	c := connect(t, co, alice)
	drain(c)

	co.CreateRoom(context.Background(), c, "   ", "")
	mustFrame(t, c, "chat-error")
}

func TestLeaveDefaultRoomRejected(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	c := connect(t, co, alice)
	drain(c)

	co.LeaveRoom(context.Background(), c, defaultRoom.ID)
	mustFrame(t, c, "chat-cannot-leave-error")
	assert.Equal(t, 1, store.memberCount(defaultRoom.ID))
}

func TestLeaveMalformedRoomID(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	c := connect(t, co, alice)
	drain(c)

	co.LeaveRoom(context.Background(), c, "nope")
	mustFrame(t, c, "chat-invalid-room-error")
}

func TestLastLeaverRemovesAdHocRoom(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cb := connect(t, co, bob)

	co.CreateRoom(ctx, ca, "Study", "")
	room := store.roomByName("Study")
	require.NotNil(t, room)

	co.JoinRoom(ctx, ca, room.ID)
	co.JoinRoom(ctx, cb, room.ID)
	drain(ca)
	drain(cb)

	co.LeaveRoom(ctx, ca, room.ID)
	mustFrame(t, cb, EventUserLeft)
	noFrame(t, cb, EventRoomRemoved)
	assert.Equal(t, 1, store.memberCount(room.ID))

	co.LeaveRoom(ctx, cb, room.ID)
	mustFrame(t, cb, EventRoomRemoved)
	mustFrame(t, ca, EventRoomRemoved)
	noFrame(t, cb, EventRoomRemoved)
	noFrame(t, ca, EventRoomRemoved)

	_, err := store.GetRoomByID(ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.messageCount(room.ID))
}

func TestDefaultRoomSurvivesEmptyMembership(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	ctx := context.Background()

	c := connect(t, co, alice)
	drain(c)

	// Force-remove via the store to reach the empty state, then verify the
	// coordinator never deletes a non-deletable room.
	_, err := store.RemoveRoomMember(ctx, defaultRoom.ID, alice.ID)
	require.NoError(t, err)

	room, err := store.GetRoomByID(ctx, defaultRoom.ID)
	require.NoError(t, err)
	assert.False(t, room.Deletable())
}

func TestPostMessageRequiresMembership(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cb := connect(t, co, bob)

	co.CreateRoom(ctx, ca, "Study", "")
	room := store.roomByName("Study")
	require.NotNil(t, room)
	drain(ca)
	drain(cb)

	// Bob never joined the room.
	co.PostMessage(ctx, cb, room.ID, "hello")
	mustFrame(t, cb, "chat-not-member-error")
	assert.Zero(t, store.messageCount(room.ID))
}

func TestPostMessageLengthCap(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	mod := store.addUser("mod", user.RoleMod)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cm := connect(t, co, mod)
	drain(ca)
	drain(cm)

	long := strings.Repeat("a", MaxMessageLength+1)

	co.PostMessage(ctx, ca, defaultRoom.ID, long)
	mustFrame(t, ca, "chat-maxlimit-error")
	assert.Zero(t, store.messageCount(defaultRoom.ID))

	// Privileged roles are exempt from the cap.
	co.PostMessage(ctx, cm, defaultRoom.ID, long)
	mustFrame(t, cm, EventNewMessage)
	assert.Equal(t, 1, store.messageCount(defaultRoom.ID))

	// Exactly at the cap is fine for everyone.
	co.PostMessage(ctx, ca, defaultRoom.ID, strings.Repeat("b", MaxMessageLength))
	mustFrame(t, ca, EventNewMessage)
}

func TestPostMessageBroadcastMatchesPersistenceOrder(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cb := connect(t, co, bob)
	drain(ca)
	drain(cb)

	bodies := []string{"one", "two", "three"}
	for _, body := range bodies {
		co.PostMessage(ctx, ca, defaultRoom.ID, body)
	}

	for _, want := range bodies {
		frame := mustFrame(t, cb, EventNewMessage)
		var view MessageView
		require.NoError(t, json.Unmarshal(frame.Payload, &view))
		assert.Equal(t, want, view.Body)
		assert.Equal(t, alice.ID, view.Author.ID)
		assert.Equal(t, "alice", view.Author.DisplayName)
	}

	assert.Equal(t, len(bodies), store.messageCount(defaultRoom.ID))
}

func TestJoinReplaysBoundedHistoryOldestFirst(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	drain(ca)

	total := HistoryLimit + 10
	for i := 0; i < total; i++ {
		co.PostMessage(ctx, ca, defaultRoom.ID, "msg-"+string(rune('A'+i%26))+"-"+randx.NewID()[:4])
	}
	drain(ca)

	cb := connect(t, co, bob)
	frame := mustFrame(t, cb, EventPreviousMessages)

	var prev PreviousMessagesPayload
	require.NoError(t, json.Unmarshal(frame.Payload, &prev))
	require.Len(t, prev.Messages, HistoryLimit)

	// The window is the most recent HistoryLimit messages, oldest first.
	all := store.messages[defaultRoom.ID]
	require.Len(t, all, total)
	assert.Equal(t, all[total-HistoryLimit].Body, prev.Messages[0].Body)
	assert.Equal(t, all[total-1].Body, prev.Messages[HistoryLimit-1].Body)
}

func TestHiddenMessagesExcludedFromHistory(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	drain(ca)

	co.PostMessage(ctx, ca, defaultRoom.ID, "visible")
	co.PostMessage(ctx, ca, defaultRoom.ID, "moderated")

	store.mu.Lock()
	store.messages[defaultRoom.ID][1].Status = MessageStatusHidden
	store.mu.Unlock()

	cb := connect(t, co, bob)
	frame := mustFrame(t, cb, EventPreviousMessages)

	var prev PreviousMessagesPayload
	require.NoError(t, json.Unmarshal(frame.Payload, &prev))
	require.Len(t, prev.Messages, 1)
	assert.Equal(t, "visible", prev.Messages[0].Body)
}

func TestBroadcastScopedToRoom(t *testing.T) {
	co, store, _ := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cb := connect(t, co, bob)

	co.CreateRoom(ctx, ca, "Study", "")
	room := store.roomByName("Study")
	require.NotNil(t, room)

	co.JoinRoom(ctx, ca, room.ID)
	drain(ca)
	drain(cb)

	co.PostMessage(ctx, ca, room.ID, "secret plans")

	mustFrame(t, ca, EventNewMessage)
	noFrame(t, cb, EventNewMessage)
}

func TestDisconnectKeepsStoreMembership(t *testing.T) {
	co, store, defaultRoom := newTestCoordinator(t)
	alice := store.addUser("alice", user.RoleStudent)
	bob := store.addUser("bob", user.RoleStudent)
	ctx := context.Background()

	ca := connect(t, co, alice)
	cb := connect(t, co, bob)
	drain(ca)
	drain(cb)

	co.Disconnect(ca)

	// Store membership survives the dropped connection.
	assert.Equal(t, 2, store.memberCount(defaultRoom.ID))

	// The dropped connection no longer receives room traffic.
	co.PostMessage(ctx, cb, defaultRoom.ID, "anyone here?")
	mustFrame(t, cb, EventNewMessage)
	noFrame(t, ca, EventNewMessage)
}
