package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	cport "go-courier/internal/infrastructure/cache/port"
	pport "go-courier/internal/infrastructure/push/port"
	qport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/notification/application/badge"
	notification "go-courier/internal/pkg/notification/application/domain"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
	user "go-courier/internal/pkg/user/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/google/uuid"
)

// DeliverNotificationTaskType is the queue task name for delivering one
// notification to one recipient.
const DeliverNotificationTaskType = "notification:deliver"

// DeliverNotificationTask is the worker side of the delivery pipeline. It
// resolves the delivery channel, persists exactly one record, then attempts
// each transport independently. Only a failed persist fails the job; transport
// failures are logged and the record stays visible in-app.
type DeliverNotificationTask struct {
	Repo     repository.NotificationRepository
	Users    userrepo.UserRepository
	Push     pport.Provider
	Registry realtime.SessionRegistry
	Cache    cport.Cache
	Logger   *slog.Logger
}

func NewDeliverNotificationTask(
	repo repository.NotificationRepository,
	users userrepo.UserRepository,
	push pport.Provider,
	registry realtime.SessionRegistry,
	cache cport.Cache,
	logger *slog.Logger,
) *DeliverNotificationTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeliverNotificationTask{
		Repo:     repo,
		Users:    users,
		Push:     push,
		Registry: registry,
		Cache:    cache,
		Logger:   logger,
	}
}

// Register binds the handler to the provided server.
func (d *DeliverNotificationTask) Register(srv qport.Server) {
	srv.Register(DeliverNotificationTaskType, d.Handle)
}

// Handle processes one delivery job. Handlers run at-least-once, so every
// step tolerates repetition.
func (d *DeliverNotificationTask) Handle(ctx context.Context, t qport.Task) error {
	var job notification.Job
	if err := json.Unmarshal(t.Payload, &job); err != nil {
		// malformed payload, retrying cannot help
		d.Logger.Error("notification payload unreadable", "err", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	u, err := d.Users.Get(ctx, job.UserID)
	if err != nil {
		d.Logger.Warn("recipient lookup failed, delivering in-app only", "userId", job.UserID, "err", err)
	}

	pushToken := ""
	if u != nil {
		pushToken = u.PushToken
	}
	channel := resolveChannel(job.ChannelHint, pushToken, d.isOnline(ctx, job.UserID))

	record := notification.Notification{
		ID:        uuid.NewString(),
		UserID:    job.UserID,
		Type:      job.Type,
		Content:   job.Content,
		Channel:   channel,
		Status:    notification.StatusUnread,
		Metadata:  job.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := d.Repo.Insert(ctx, record); err != nil {
		return err
	}

	if (channel == notification.ChannelFCM || channel == notification.ChannelAll) && pushToken != "" && d.Push != nil {
		p := pport.Payload{Title: pushTitle(job.Type), Body: job.Content, Data: job.Metadata}
		if err := d.Push.Send(ctx, pushToken, p); err != nil {
			d.Logger.Warn("push send failed", "userId", job.UserID, "err", err)
		}
	}

	if channel == notification.ChannelSocket || channel == notification.ChannelAll {
		if payload, err := realtime.Encode(realtime.EventNewNotification, record); err == nil {
			d.Registry.NotifyUser(job.UserID, payload)
		}
	}

	badge.Refresh(ctx, d.Repo, d.Cache, d.Registry, d.Logger, job.UserID)
	return nil
}

// isOnline checks the local registry first, then the presence heartbeat key.
// A headless worker draining the queue has an empty registry, yet the user may
// be live on a gateway node; the heartbeat keeps channel stamping accurate.
func (d *DeliverNotificationTask) isOnline(ctx context.Context, userID string) bool {
	if d.Registry.IsOnline(userID) {
		return true
	}
	_, err := d.Cache.Get(ctx, user.PresenceCacheKey(userID))
	return err == nil
}

// resolveChannel picks the delivery channel. An explicit hint wins; otherwise
// prefer push when a token is registered, live socket when connected, and
// fall back to in-app.
func resolveChannel(hint notification.Channel, pushToken string, online bool) notification.Channel {
	switch hint {
	case notification.ChannelFCM, notification.ChannelSocket, notification.ChannelInApp:
		return hint
	}
	if pushToken != "" {
		return notification.ChannelAll
	}
	if online {
		return notification.ChannelSocket
	}
	return notification.ChannelInApp
}

func pushTitle(notificationType string) string {
	switch notificationType {
	case "newMessage":
		return "New message"
	case "addedToConversation":
		return "Added to a conversation"
	default:
		return "Notification"
	}
}
