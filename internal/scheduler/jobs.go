package scheduler

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	"go.uber.org/zap"
)

const relatedTypeTask = "task"

// ExpirePaymentLinksJob moves pending links past their expiry to expired.
func (s *Scheduler) ExpirePaymentLinksJob(ctx context.Context, run *jobRun) error {
	now := s.clock.Now()

	var ids []snowflake.ID
	err := s.db.WithContext(ctx).
		Model(&paymentdomain.PaymentLink{}).
		Where("status = ? AND expires_at <= ?", paymentdomain.StatusPending, now).
		Order("expires_at ASC").
		Limit(s.cfg.BatchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	// The status guard keeps a link that settled meanwhile untouched.
	res := s.db.WithContext(ctx).
		Model(&paymentdomain.PaymentLink{}).
		Where("id IN ? AND status = ?", ids, paymentdomain.StatusPending).
		Updates(map[string]any{
			"status":     paymentdomain.StatusExpired,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	run.AddProcessed(int(res.RowsAffected))
	return nil
}

// OverdueTaskRemindersJob sends the assignee of every open task past its due
// date a single deadline notification. It is a no-op without a notification
// service.
func (s *Scheduler) OverdueTaskRemindersJob(ctx context.Context, run *jobRun) error {
	if s.notifications == nil {
		return nil
	}
	now := s.clock.Now()
	var cursor snowflake.ID
	sent := 0

	for sent < s.cfg.BatchSize {
		var tasks []taskdomain.Task
		err := s.db.WithContext(ctx).
			Where("id > ?", cursor).
			Where("due_date IS NOT NULL AND due_date < ?", now).
			Where("assigned_to IS NOT NULL").
			Where("status NOT IN ?", []string{taskdomain.StatusDone, taskdomain.StatusCancelled}).
			Order("id ASC").
			Limit(s.cfg.BatchSize).
			Find(&tasks).Error
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		cursor = tasks[len(tasks)-1].ID

		reminded, err := s.remindedTasks(ctx, tasks)
		if err != nil {
			return err
		}

		for i := range tasks {
			if sent >= s.cfg.BatchSize {
				break
			}
			task := &tasks[i]
			if _, ok := reminded[task.ID.String()]; ok {
				continue
			}
			if err := s.sendOverdueReminder(ctx, task); err != nil {
				run.IncError()
				s.log.Warn("overdue reminder failed",
					zap.String("task_id", task.ID.String()),
					zap.Error(err),
				)
				continue
			}
			sent++
			run.AddProcessed(1)
		}

		if len(tasks) < s.cfg.BatchSize {
			return nil
		}
	}
	return nil
}

func (s *Scheduler) remindedTasks(ctx context.Context, tasks []taskdomain.Task) (map[string]struct{}, error) {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID.String())
	}

	var related []string
	err := s.db.WithContext(ctx).
		Model(&notificationdomain.Notification{}).
		Where("type = ? AND related_type = ? AND related_id IN ?", notificationdomain.TypeDeadline, relatedTypeTask, ids).
		Pluck("related_id", &related).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]struct{}, len(related))
	for _, id := range related {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *Scheduler) sendOverdueReminder(ctx context.Context, task *taskdomain.Task) error {
	taskID := task.ID.String()
	title := task.Title
	actionURL := "/tasks/" + taskID
	relatedType := relatedTypeTask
	due := task.DueDate.Format("2006-01-02")

	_, err := s.notifications.Create(ctx, notificationdomain.CreateRequest{
		UserID:      *task.AssignedTo,
		Type:        notificationdomain.TypeDeadline,
		Title:       "Task overdue",
		Message:     fmt.Sprintf("%s was due on %s", task.Title, due),
		ActionURL:   &actionURL,
		RelatedType: &relatedType,
		RelatedID:   &taskID,
		RelatedName: &title,
		Metadata: map[string]any{
			"task_id":       taskID,
			"my_company_id": task.MyCompanyID.String(),
			"due_date":      due,
		},
	})
	return err
}
