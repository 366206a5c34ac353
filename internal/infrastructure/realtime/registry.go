package realtime

import (
	"sync"
)

// Session is the registry's view of one live connection. Connection satisfies
// it; tests substitute stubs.
type Session interface {
	SessionID() string
	UserID() string
	Send(payload []byte) error
	Close(code int, reason string)
}

// SessionRegistry is the process-owned directory of live sessions and room
// subscriptions. Only the session gateway and the room manager mutate it; every
// other component reads through it for fan-out.
type SessionRegistry interface {
	// Register tracks a new session and reports whether it is the user's first
	// live connection (the offline -> online transition).
	Register(s Session) (first bool)
	// Unregister drops a session and reports whether it was the user's last
	// live connection (the online -> offline transition).
	Unregister(s Session) (last bool)

	Subscribe(s Session, room string)
	Unsubscribe(s Session, room string)
	// SubscribeUser joins every live session of the user to the room. A user
	// with zero sessions is a no-op; the next connect catches up.
	SubscribeUser(userID string, room string)
	UnsubscribeUser(userID string, room string)

	ConnectionsFor(userID string) []Session
	IsOnline(userID string) bool

	// Broadcast fans payload out to every session subscribed to the room except
	// the one identified by excludeSessionID. It returns the delivered count.
	Broadcast(room string, payload []byte, excludeSessionID string) int
	// BroadcastExceptUser is Broadcast with a user-level exclusion: none of the
	// excluded user's sessions receive the payload.
	BroadcastExceptUser(room string, payload []byte, excludeUserID string) int
	// BroadcastAll delivers payload to every tracked session of every user
	// except excludeUserID. Used for global presence signals.
	BroadcastAll(payload []byte, excludeUserID string) int
	// NotifyUser delivers payload to every live session of one user.
	NotifyUser(userID string, payload []byte) int
}

// Registry is the in-memory SessionRegistry implementation. It keeps forward
// and reverse indexes so user lookups, room fan-out, and session teardown are
// all O(affected entries).
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]Session             // sessionID -> session
	userSessions map[string]map[string]Session  // userID -> sessionID -> session
	rooms        map[string]map[string]Session  // room -> sessionID -> session
	sessionRooms map[string]map[string]struct{} // sessionID -> set of rooms
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]Session),
		userSessions: make(map[string]map[string]Session),
		rooms:        make(map[string]map[string]Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

var _ SessionRegistry = (*Registry)(nil)

func (r *Registry) Register(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.SessionID()] = s
	byUser := r.userSessions[s.UserID()]
	first := len(byUser) == 0
	if byUser == nil {
		byUser = make(map[string]Session)
		r.userSessions[s.UserID()] = byUser
	}
	byUser[s.SessionID()] = s
	r.sessionRooms[s.SessionID()] = make(map[string]struct{})
	return first
}

func (r *Registry) Unregister(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.SessionID()]; !ok {
		return false
	}
	delete(r.sessions, s.SessionID())

	for room := range r.sessionRooms[s.SessionID()] {
		r.leaveLocked(room, s.SessionID())
	}
	delete(r.sessionRooms, s.SessionID())

	byUser := r.userSessions[s.UserID()]
	delete(byUser, s.SessionID())
	if len(byUser) == 0 {
		delete(r.userSessions, s.UserID())
		return true
	}
	return false
}

func (r *Registry) Subscribe(s Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribeLocked(s, room)
}

func (r *Registry) Unsubscribe(s Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, s.SessionID())
}

func (r *Registry) SubscribeUser(userID string, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.userSessions[userID] {
		r.subscribeLocked(s, room)
	}
}

func (r *Registry) UnsubscribeUser(userID string, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.userSessions[userID] {
		r.leaveLocked(room, id)
	}
}

func (r *Registry) ConnectionsFor(userID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byUser := r.userSessions[userID]
	if len(byUser) == 0 {
		return nil
	}
	out := make([]Session, 0, len(byUser))
	for _, s := range byUser {
		out = append(out, s)
	}
	return out
}

// IsOnline reports presence: true iff the user has at least one live session.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.userSessions[userID]) > 0
}

func (r *Registry) Broadcast(room string, payload []byte, excludeSessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for id, s := range r.rooms[room] {
		if id == excludeSessionID {
			continue
		}
		if s.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) BroadcastExceptUser(room string, payload []byte, excludeUserID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, s := range r.rooms[room] {
		if s.UserID() == excludeUserID {
			continue
		}
		if s.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) BroadcastAll(payload []byte, excludeUserID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, s := range r.sessions {
		if excludeUserID != "" && s.UserID() == excludeUserID {
			continue
		}
		if s.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) NotifyUser(userID string, payload []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, s := range r.userSessions[userID] {
		if s.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked sessions and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]Session)
	r.userSessions = make(map[string]map[string]Session)
	r.rooms = make(map[string]map[string]Session)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close(1001, "registry shutdown")
	}
}

func (r *Registry) subscribeLocked(s Session, room string) {
	if _, ok := r.sessions[s.SessionID()]; !ok {
		return
	}
	members := r.rooms[room]
	if members == nil {
		members = make(map[string]Session)
		r.rooms[room] = members
	}
	members[s.SessionID()] = s

	memberships := r.sessionRooms[s.SessionID()]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[s.SessionID()] = memberships
	}
	memberships[room] = struct{}{}
}

func (r *Registry) leaveLocked(room string, sessionID string) {
	members := r.rooms[room]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, room)
	}
}
