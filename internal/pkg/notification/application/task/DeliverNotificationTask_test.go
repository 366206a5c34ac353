package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	cport "go-courier/internal/infrastructure/cache/port"
	pport "go-courier/internal/infrastructure/push/port"
	qport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	notification "go-courier/internal/pkg/notification/application/domain"
	user "go-courier/internal/pkg/user/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

type stubNotificationRepo struct {
	inserted  []notification.Notification
	unread    int64
	errInsert error
	errCount  error
}

func (s *stubNotificationRepo) Insert(ctx context.Context, n notification.Notification) (string, error) {
	if s.errInsert != nil {
		return "", s.errInsert
	}
	s.inserted = append(s.inserted, n)
	s.unread++
	return n.ID, nil
}

func (s *stubNotificationRepo) List(ctx context.Context, userID string, page, limit int) ([]notification.Notification, error) {
	return s.inserted, nil
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	if s.errCount != nil {
		return 0, s.errCount
	}
	return s.unread, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id, userID string) error { return nil }

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID string) error { return nil }

type stubUserStore struct {
	users map[string]*user.User
}

func (s *stubUserStore) Get(ctx context.Context, userID string) (*user.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUserStore) GetMany(ctx context.Context, userIDs []string) ([]user.User, error) {
	return nil, nil
}

func (s *stubUserStore) SetPresence(ctx context.Context, userID string, status user.PresenceStatus, lastSeen time.Time) error {
	return nil
}

func (s *stubUserStore) SetPushToken(ctx context.Context, userID, token string) error { return nil }

func (s *stubUserStore) ApplyMessageFanout(ctx context.Context, in userrepo.FanoutInput) error {
	return nil
}

func (s *stubUserStore) ResetUnread(ctx context.Context, userID, conversationID, lastReadMessageID string, at time.Time) error {
	return nil
}

func (s *stubUserStore) RecentConversations(ctx context.Context, userID string, page, limit int) ([]user.RecentConversation, error) {
	return nil, nil
}

func (s *stubUserStore) SetPinned(ctx context.Context, userID, conversationID string, pinned bool) error {
	return nil
}

func (s *stubUserStore) SetMuted(ctx context.Context, userID, conversationID string, muted bool, until *time.Time) error {
	return nil
}

type stubPush struct {
	sent []string
	err  error
}

func (s *stubPush) Send(ctx context.Context, token string, p pport.Payload) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, token)
	return nil
}

func (s *stubPush) SendMulti(ctx context.Context, tokens []string, p pport.Payload) ([]pport.Result, error) {
	out := make([]pport.Result, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, pport.Result{Token: tok, Err: s.Send(ctx, tok, p)})
	}
	return out, nil
}

type stubCache struct {
	values map[string]string
}

func newStubCache() *stubCache { return &stubCache{values: make(map[string]string)} }

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", cport.ErrMiss
	}
	return v, nil
}

func (s *stubCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *stubCache) Del(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			n++
		}
	}
	return n, nil
}

func (s *stubCache) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }

func (s *stubCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }

func (s *stubCache) Ping(ctx context.Context) error { return nil }

func (s *stubCache) Close() error { return nil }

type recordingSession struct {
	id       string
	userID   string
	received [][]byte
}

func (s *recordingSession) SessionID() string { return s.id }
func (s *recordingSession) UserID() string    { return s.userID }
func (s *recordingSession) Send(p []byte) error {
	s.received = append(s.received, p)
	return nil
}
func (s *recordingSession) Close(code int, reason string) {}

func jobPayload(t *testing.T, job notification.Job) qport.Task {
	t.Helper()
	b, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return qport.Task{Type: DeliverNotificationTaskType, Payload: b}
}

func TestResolveChannel(t *testing.T) {
	cases := []struct {
		name   string
		hint   notification.Channel
		token  string
		online bool
		want   notification.Channel
	}{
		{"explicit hint wins", notification.ChannelInApp, "tok", true, notification.ChannelInApp},
		{"token prefers both transports", "", "tok", false, notification.ChannelAll},
		{"live session without token", "", "", true, notification.ChannelSocket},
		{"offline without token", "", "", false, notification.ChannelInApp},
		{"all hint resolves again", notification.ChannelAll, "", false, notification.ChannelInApp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveChannel(tc.hint, tc.token, tc.online); got != tc.want {
				t.Fatalf("resolveChannel = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHandlePersistsExactlyOneRecord(t *testing.T) {
	repo := &stubNotificationRepo{}
	users := &stubUserStore{users: map[string]*user.User{
		"bob": {ID: "bob", PushToken: "tok-1"},
	}}
	push := &stubPush{}
	registry := realtime.NewRegistry()
	cache := newStubCache()

	d := NewDeliverNotificationTask(repo, users, push, registry, cache, nil)
	err := d.Handle(context.Background(), jobPayload(t, notification.Job{
		UserID:  "bob",
		Type:    "newMessage",
		Content: "hello",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(repo.inserted))
	}
	rec := repo.inserted[0]
	if rec.Channel != notification.ChannelAll {
		t.Fatalf("channel = %q, want all (push token registered)", rec.Channel)
	}
	if rec.Status != notification.StatusUnread {
		t.Fatalf("status = %q, want unread", rec.Status)
	}
	if len(push.sent) != 1 || push.sent[0] != "tok-1" {
		t.Fatalf("push sent = %v", push.sent)
	}
	if cache.values[notification.BadgeCacheKey("bob")] != "1" {
		t.Fatalf("badge cache = %q, want 1", cache.values[notification.BadgeCacheKey("bob")])
	}
}

func TestHandleFailsOnlyWhenPersistFails(t *testing.T) {
	repo := &stubNotificationRepo{errInsert: errors.New("write concern")}
	users := &stubUserStore{users: map[string]*user.User{"bob": {ID: "bob"}}}

	d := NewDeliverNotificationTask(repo, users, &stubPush{}, realtime.NewRegistry(), newStubCache(), nil)
	err := d.Handle(context.Background(), jobPayload(t, notification.Job{UserID: "bob", Type: "newMessage"}))
	if err == nil {
		t.Fatal("persist failure must fail the job so it retries")
	}
}

func TestHandlePushFailureStillDeliversSocket(t *testing.T) {
	repo := &stubNotificationRepo{}
	users := &stubUserStore{users: map[string]*user.User{
		"bob": {ID: "bob", PushToken: "tok-1"},
	}}
	push := &stubPush{err: errors.New("invalid token")}
	registry := realtime.NewRegistry()
	session := &recordingSession{id: "s1", userID: "bob"}
	registry.Register(session)

	d := NewDeliverNotificationTask(repo, users, push, registry, newStubCache(), nil)
	err := d.Handle(context.Background(), jobPayload(t, notification.Job{
		UserID: "bob", Type: "newMessage", Content: "hi",
	}))
	if err != nil {
		t.Fatalf("transport failure must not fail the job: %v", err)
	}

	// newNotification plus the badge recount frame
	if len(session.received) != 2 {
		t.Fatalf("socket frames = %d, want 2", len(session.received))
	}
	var first realtime.Frame
	if err := json.Unmarshal(session.received[0], &first); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if first.Event != realtime.EventNewNotification {
		t.Fatalf("event = %q, want newNotification", first.Event)
	}
}

func TestHandleHeartbeatCountsAsOnline(t *testing.T) {
	repo := &stubNotificationRepo{}
	users := &stubUserStore{users: map[string]*user.User{"bob": {ID: "bob"}}}
	cache := newStubCache()
	// bob is live on another gateway node: the heartbeat exists, the local
	// registry is empty
	cache.values[user.PresenceCacheKey("bob")] = "online"

	d := NewDeliverNotificationTask(repo, users, &stubPush{}, realtime.NewRegistry(), cache, nil)
	err := d.Handle(context.Background(), jobPayload(t, notification.Job{UserID: "bob", Type: "newMessage"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(repo.inserted))
	}
	if repo.inserted[0].Channel != notification.ChannelSocket {
		t.Fatalf("channel = %q, want socket (heartbeat present)", repo.inserted[0].Channel)
	}
}

func TestHandleUnknownRecipientDeliversInApp(t *testing.T) {
	repo := &stubNotificationRepo{}
	users := &stubUserStore{users: map[string]*user.User{}}

	d := NewDeliverNotificationTask(repo, users, &stubPush{}, realtime.NewRegistry(), newStubCache(), nil)
	err := d.Handle(context.Background(), jobPayload(t, notification.Job{UserID: "ghost", Type: "newMessage"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatal("record must still be persisted")
	}
	if repo.inserted[0].Channel != notification.ChannelInApp {
		t.Fatalf("channel = %q, want in-app", repo.inserted[0].Channel)
	}
}

func TestHandleDropsMalformedPayload(t *testing.T) {
	d := NewDeliverNotificationTask(&stubNotificationRepo{}, &stubUserStore{}, &stubPush{}, realtime.NewRegistry(), newStubCache(), nil)
	err := d.Handle(context.Background(), qport.Task{Type: DeliverNotificationTaskType, Payload: []byte("{broken")})
	if err != nil {
		t.Fatal("malformed payload must be dropped, not retried")
	}
}
