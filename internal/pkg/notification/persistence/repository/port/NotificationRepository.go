package repository

import (
	"context"

	notification "go-courier/internal/pkg/notification/application/domain"
)

// NotificationRepository persists notification records. Marking read is the
// only mutation; records are never deleted.
type NotificationRepository interface {
	Insert(ctx context.Context, n notification.Notification) (string, error)
	List(ctx context.Context, userID string, page, limit int) ([]notification.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flips one notification owned by userID to read.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}
