package realtime

import (
	"sync"
	"testing"
)

// stubSession is a registry test double recording delivered payloads.
type stubSession struct {
	id     string
	userID string

	mu       sync.Mutex
	received [][]byte
	closed   bool
	sendErr  error
}

func newStubSession(id, userID string) *stubSession {
	return &stubSession{id: id, userID: userID}
}

func (s *stubSession) SessionID() string { return s.id }
func (s *stubSession) UserID() string    { return s.userID }

func (s *stubSession) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.received = append(s.received, payload)
	return nil
}

func (s *stubSession) Close(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *stubSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func TestRegisterReportsPresenceTransitions(t *testing.T) {
	r := NewRegistry()
	phone := newStubSession("s1", "alice")
	laptop := newStubSession("s2", "alice")

	if first := r.Register(phone); !first {
		t.Fatal("first session must report the offline to online transition")
	}
	if first := r.Register(laptop); first {
		t.Fatal("second session must not report a transition")
	}
	if !r.IsOnline("alice") {
		t.Fatal("alice must be online")
	}

	if last := r.Unregister(phone); last {
		t.Fatal("one session remains, not the last")
	}
	if last := r.Unregister(laptop); !last {
		t.Fatal("dropping the final session must report the online to offline transition")
	}
	if r.IsOnline("alice") {
		t.Fatal("alice must be offline")
	}
}

func TestUnregisterUnknownSession(t *testing.T) {
	r := NewRegistry()
	if last := r.Unregister(newStubSession("ghost", "alice")); last {
		t.Fatal("unknown session must not report a transition")
	}
}

func TestBroadcastExcludesOneSession(t *testing.T) {
	r := NewRegistry()
	alicePhone := newStubSession("s1", "alice")
	aliceLaptop := newStubSession("s2", "alice")
	bob := newStubSession("s3", "bob")
	for _, s := range []*stubSession{alicePhone, aliceLaptop, bob} {
		r.Register(s)
		r.Subscribe(s, "room")
	}

	delivered := r.Broadcast("room", []byte("msg"), alicePhone.SessionID())
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if alicePhone.count() != 0 {
		t.Fatal("excluded session must not receive the payload")
	}
	// the sender's other device still sees the message
	if aliceLaptop.count() != 1 || bob.count() != 1 {
		t.Fatalf("laptop = %d, bob = %d, want 1 each", aliceLaptop.count(), bob.count())
	}
}

func TestBroadcastExceptUserSkipsEveryDevice(t *testing.T) {
	r := NewRegistry()
	alicePhone := newStubSession("s1", "alice")
	aliceLaptop := newStubSession("s2", "alice")
	bob := newStubSession("s3", "bob")
	for _, s := range []*stubSession{alicePhone, aliceLaptop, bob} {
		r.Register(s)
		r.Subscribe(s, "room")
	}

	delivered := r.BroadcastExceptUser("room", []byte("typing"), "alice")
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if alicePhone.count() != 0 || aliceLaptop.count() != 0 {
		t.Fatal("none of the excluded user's sessions may receive the payload")
	}
}

func TestBroadcastAllForPresence(t *testing.T) {
	r := NewRegistry()
	alice := newStubSession("s1", "alice")
	bob := newStubSession("s2", "bob")
	carol := newStubSession("s3", "carol")
	for _, s := range []*stubSession{alice, bob, carol} {
		r.Register(s)
	}

	delivered := r.BroadcastAll([]byte("status"), "alice")
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if alice.count() != 0 {
		t.Fatal("subject of the status change must not be notified")
	}
}

func TestNotifyUserHitsAllDevices(t *testing.T) {
	r := NewRegistry()
	phone := newStubSession("s1", "alice")
	laptop := newStubSession("s2", "alice")
	bob := newStubSession("s3", "bob")
	for _, s := range []*stubSession{phone, laptop, bob} {
		r.Register(s)
	}

	delivered := r.NotifyUser("alice", []byte("ping"))
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if bob.count() != 0 {
		t.Fatal("other users must not be notified")
	}
}

func TestUnregisterLeavesRooms(t *testing.T) {
	r := NewRegistry()
	alice := newStubSession("s1", "alice")
	bob := newStubSession("s2", "bob")
	r.Register(alice)
	r.Register(bob)
	r.Subscribe(alice, "room")
	r.Subscribe(bob, "room")

	r.Unregister(alice)
	if delivered := r.Broadcast("room", []byte("msg"), ""); delivered != 1 {
		t.Fatalf("delivered = %d, want 1 after teardown", delivered)
	}
	if alice.count() != 0 {
		t.Fatal("departed session must not receive room traffic")
	}
}

func TestSubscribeUserJoinsEveryLiveSession(t *testing.T) {
	r := NewRegistry()
	phone := newStubSession("s1", "alice")
	laptop := newStubSession("s2", "alice")
	r.Register(phone)
	r.Register(laptop)

	r.SubscribeUser("alice", "room")
	if delivered := r.Broadcast("room", []byte("msg"), ""); delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}

	r.UnsubscribeUser("alice", "room")
	if delivered := r.Broadcast("room", []byte("msg"), ""); delivered != 0 {
		t.Fatalf("delivered = %d, want 0 after unsubscribe", delivered)
	}
}

func TestSubscribeIgnoresUnregisteredSession(t *testing.T) {
	r := NewRegistry()
	ghost := newStubSession("s1", "alice")
	r.Subscribe(ghost, "room")
	if delivered := r.Broadcast("room", []byte("msg"), ""); delivered != 0 {
		t.Fatal("unregistered session must not join rooms")
	}
}

func TestCloseTerminatesSessions(t *testing.T) {
	r := NewRegistry()
	alice := newStubSession("s1", "alice")
	r.Register(alice)

	r.Close()
	if !alice.closed {
		t.Fatal("close must terminate tracked sessions")
	}
	if r.IsOnline("alice") {
		t.Fatal("registry state must be cleared")
	}
}
