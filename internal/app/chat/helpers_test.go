package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studychat/internal/app/user"
	"studychat/internal/pkg/randx"
)

// memStore is an in-memory Store used to drive the Coordinator directly.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*user.User
	rooms    map[string]*Room
	members  map[string]map[string]struct{}
	messages map[string][]*Message
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*user.User),
		rooms:    make(map[string]*Room),
		members:  make(map[string]map[string]struct{}),
		messages: make(map[string][]*Message),
	}
}

func (m *memStore) addUser(displayName string, role user.Role) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &user.User{
		ID:            randx.NewID(),
		Username:      displayName,
		DisplayName:   displayName,
		Role:          role,
		AccountStatus: user.StatusActive,
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addRoom(name, roomType string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := &Room{
		ID:        randx.NewID(),
		Name:      name,
		Type:      roomType,
		Status:    RoomStatusActive,
		CreatedAt: time.Now(),
	}
	m.rooms[room.ID] = room
	m.members[room.ID] = make(map[string]struct{})
	return room
}

func (m *memStore) memberCount(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members[roomID])
}

func (m *memStore) messageCount(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[roomID])
}

func (m *memStore) roomByName(name string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms {
		if room.Name == name {
			return room
		}
	}
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetRoomByID(_ context.Context, id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (m *memStore) DefaultRoom(_ context.Context) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms {
		if room.Type == RoomTypeDefault {
			cp := *room
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) RoomNameExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms {
		if room.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateRoom(_ context.Context, room *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rooms {
		if existing.Name == room.Name {
			return ErrNameTaken
		}
	}

	cp := *room
	cp.Status = RoomStatusActive
	cp.CreatedAt = time.Now()
	m.rooms[cp.ID] = &cp
	m.members[cp.ID] = make(map[string]struct{})
	return nil
}

func (m *memStore) AddRoomMember(_ context.Context, roomID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.members[roomID]
	if !ok {
		set = make(map[string]struct{})
		m.members[roomID] = set
	}
	if _, present := set[userID]; present {
		return false, nil
	}
	set[userID] = struct{}{}
	return true, nil
}

func (m *memStore) RemoveRoomMember(_ context.Context, roomID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.members[roomID]
	if !ok {
		return false, nil
	}
	if _, present := set[userID]; !present {
		return false, nil
	}
	delete(set, userID)
	return true, nil
}

func (m *memStore) IsRoomMember(_ context.Context, roomID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, present := m.members[roomID][userID]
	return present, nil
}

func (m *memStore) RoomMemberCount(_ context.Context, roomID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.members[roomID]), nil
}

func (m *memStore) DeleteRoomWithMessages(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, roomID)
	delete(m.members, roomID)
	delete(m.messages, roomID)
	return nil
}

func (m *memStore) InsertMessage(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *msg
	cp.Status = MessageStatusActive
	cp.CreatedAt = time.Now()
	msg.Status = cp.Status
	msg.CreatedAt = cp.CreatedAt
	m.messages[cp.RoomID] = append(m.messages[cp.RoomID], &cp)
	return nil
}

func (m *memStore) LastRoomMessages(_ context.Context, roomID string, limit int) ([]MessageView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]*Message, 0, len(m.messages[roomID]))
	for _, msg := range m.messages[roomID] {
		if msg.Status == MessageStatusActive {
			active = append(active, msg)
		}
	}

	if len(active) > limit {
		active = active[len(active)-limit:]
	}

	views := make([]MessageView, 0, len(active))
	for _, msg := range active {
		view := MessageView{
			ID:        msg.ID,
			RoomID:    msg.RoomID,
			Body:      msg.Body,
			CreatedAt: msg.CreatedAt,
		}
		if author, ok := m.users[msg.AuthorID]; ok {
			view.Author = author.Public()
		}
		views = append(views, view)
	}
	return views, nil
}

// testFrame is one decoded outbound envelope read from a client's queue.
type testFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// newTestCoordinator builds a Coordinator over a fresh memStore with a
// default room already present.
func newTestCoordinator(t *testing.T) (*Coordinator, *memStore, *Room) {
	t.Helper()

	store := newMemStore()
	defaultRoom := store.addRoom("General", RoomTypeDefault)
	defaultRoom.Description = "Talk to everyone!"

	return NewCoordinator(store, defaultRoom.ID), store, defaultRoom
}

// connect registers a client without a transport and returns it. A non-nil
// user triggers the default-room auto-join.
func connect(t *testing.T, co *Coordinator, usr *user.User) *Client {
	t.Helper()

	c := NewClient(co, nil, usr, "")
	co.Connect(context.Background(), c)
	return c
}

// nextFrame pops one queued frame, failing the test when the queue is empty.
func nextFrame(t *testing.T, c *Client) testFrame {
	t.Helper()

	select {
	case raw := <-c.send:
		var frame testFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("expected a queued frame, got none")
		return testFrame{}
	}
}

// mustFrame pops frames until one matches the wanted event.
func mustFrame(t *testing.T, c *Client, event string) testFrame {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case raw := <-c.send:
			var frame testFrame
			require.NoError(t, json.Unmarshal(raw, &frame))
			if frame.Event == event {
				return frame
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected frame %q not received", event)
	return testFrame{}
}

// noFrame asserts that no frame with the given event is queued.
func noFrame(t *testing.T, c *Client, event string) {
	t.Helper()

	for {
		select {
		case raw := <-c.send:
			var frame testFrame
			require.NoError(t, json.Unmarshal(raw, &frame))
			require.NotEqual(t, event, frame.Event)
		default:
			return
		}
	}
}

// drain discards every queued frame.
func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
