package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	qport "go-courier/internal/infrastructure/queue/port"
	notification "go-courier/internal/pkg/notification/application/domain"
	"go-courier/internal/pkg/notification/application/task"
)

// ScheduleResult reports the outcome of one enqueue attempt. Scheduling is
// best-effort from the caller's point of view: a failed enqueue never fails
// the operation that triggered it, so the result carries the error instead of
// returning it.
type ScheduleResult struct {
	Enqueued bool
	TaskID   string
	Err      error
}

// ScheduleNotificationUseCase hands delivery jobs to the durable queue. The
// worker picks them up, resolves the channel and performs the sends.
type ScheduleNotificationUseCase struct {
	Queue  qport.Client
	Logger *slog.Logger
}

func NewScheduleNotificationUseCase(queue qport.Client, logger *slog.Logger) *ScheduleNotificationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleNotificationUseCase{Queue: queue, Logger: logger}
}

func (uc *ScheduleNotificationUseCase) Execute(ctx context.Context, job notification.Job) ScheduleResult {
	payload, err := json.Marshal(job)
	if err != nil {
		uc.Logger.Error("notification job marshal failed", "userId", job.UserID, "type", job.Type, "err", err)
		return ScheduleResult{Err: err}
	}

	id, err := uc.Queue.Enqueue(ctx, qport.Task{
		Type:    task.DeliverNotificationTaskType,
		Payload: payload,
	}, qport.EnqueueOption{
		Queue:     "notifications",
		MaxRetry:  5,
		Retention: 24 * time.Hour,
	})
	if err != nil {
		uc.Logger.Warn("notification enqueue failed", "userId", job.UserID, "type", job.Type, "err", err)
		return ScheduleResult{Err: err}
	}
	return ScheduleResult{Enqueued: true, TaskID: id}
}
