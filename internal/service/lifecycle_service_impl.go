package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/alexanderramin/buildtrack/internal/db"
	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/alexanderramin/buildtrack/internal/notify"
	"github.com/alexanderramin/buildtrack/internal/repository"
	"github.com/rs/zerolog"
)

type lifecycleService struct {
	uow        db.UnitOfWork
	dispatcher *notify.Dispatcher
	audit      *auditRecorder
	observer   UseCaseObserver
	now        func() time.Time
}

func NewLifecycleService(
	uow db.UnitOfWork,
	dispatcher *notify.Dispatcher,
	auditLog audit.Log,
	log zerolog.Logger,
	observers ...UseCaseObserver,
) LifecycleService {
	return &lifecycleService{
		uow:        uow,
		dispatcher: dispatcher,
		audit:      newAuditRecorder(auditLog, log),
		observer:   useCaseObserverOrNoop(observers),
		now:        time.Now,
	}
}

// AdvanceTasks completes up to completionCount pending tasks of a project in
// ascending id order, re-derives the project status and, when it changes,
// records one notification per recipient. The status is recounted even when
// no task was selected. All writes share one transaction.
// Notifications are delivered only after the commit.
func (s *lifecycleService) AdvanceTasks(ctx context.Context, actor domain.Principal, projectID int64, completionCount int) (result *AdvanceResult, err error) {
	startedAt := s.now()
	fields := map[string]any{
		"project_id": projectID,
		"requested":  completionCount,
		"actor":      actor.UserID,
	}
	defer func() {
		observe(ctx, s.observer, "advance-tasks", startedAt, fields, err)
	}()

	if completionCount < 0 {
		return nil, invalid("completion count must be >= 0, got %d", completionCount)
	}
	if err = validateActor(actor); err != nil {
		return nil, err
	}

	res := &AdvanceResult{ProjectID: projectID}
	var (
		delivery    notify.Delivery
		projectName string
	)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLProjectRepo(tx)
		tasks := repository.NewSQLTaskRepo(tx)
		notifications := repository.NewSQLNotificationRepo(tx)

		p, err := projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if err := requireOperator(actor, p); err != nil {
			return err
		}
		projectName = p.Name
		res.PreviousStatus = p.Status
		res.Status = p.Status

		pending, err := tasks.SelectPendingOrderedByID(ctx, projectID, completionCount)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(pending))
		for _, t := range pending {
			ids = append(ids, t.ID)
		}
		now := s.now().UTC()
		res.UpdatedCount, err = tasks.MarkCompleted(ctx, ids, now)
		if err != nil {
			return err
		}

		// Status is re-derived on every call, so a stored status that
		// disagrees with the task rows is repaired even when nothing was selected.
		counts, err := tasks.CountByStatus(ctx, projectID)
		if err != nil {
			return err
		}
		next := domain.DeriveStatus(p.Status, counts.Total, counts.Pending)
		if next == p.Status {
			return nil
		}
		if err := projects.SetStatus(ctx, projectID, p.Status, next, now); err != nil {
			return err
		}
		res.Status = next
		res.Changed = true

		delivery, err = s.dispatcher.Persist(ctx, notifications, p.StatusRecipients(), domain.StatusMessage(p.Name, next), notify.ModeFor(next))
		return err
	})
	if err != nil {
		err = classify(err, ErrTransactionFailed)
		return nil, err
	}

	fields["updated"] = res.UpdatedCount
	fields["status"] = string(res.Status)

	if res.Changed {
		report := s.dispatcher.Deliver(ctx, delivery)
		res.Notified = report.Delivered
		fields["notified"] = report.Delivered
		fields["notify_failed"] = report.Failed
	}
	if res.UpdatedCount > 0 || res.Changed {
		detail := fmt.Sprintf("project '%s': %d task(s) completed, status %s", projectName, res.UpdatedCount, res.Status)
		s.audit.record(audit.NewEntry(audit.ActionStatusUpdated, actor, projectID, detail))
	}
	return res, nil
}
