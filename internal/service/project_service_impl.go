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
	"github.com/alexanderramin/buildtrack/internal/scheduler"
	"github.com/rs/zerolog"
)

type projectService struct {
	projects   repository.ProjectRepo
	tasks      repository.TaskRepo
	uow        db.UnitOfWork
	dispatcher *notify.Dispatcher
	audit      *auditRecorder
	observer   UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	dispatcher *notify.Dispatcher,
	auditLog audit.Log,
	log zerolog.Logger,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects:   projects,
		tasks:      tasks,
		uow:        uow,
		dispatcher: dispatcher,
		audit:      newAuditRecorder(auditLog, log),
		observer:   useCaseObserverOrNoop(observers),
	}
}

// Create inserts an UPCOMING project with zero spend and its generated
// phases, and notifies the client and manager, in one transaction.
func (s *projectService) Create(ctx context.Context, actor domain.Principal, in NewProject) (p *domain.Project, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": in.Name, "phases": in.Phases}
	defer func() {
		observe(ctx, s.observer, "create-project", startedAt, fields, err)
	}()

	if err = validateActor(actor); err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleBuilder:
		in.BuilderID = actor.UserID
	case domain.RoleAdmin:
		if in.BuilderID <= 0 {
			return nil, invalid("builder id is required")
		}
	default:
		return nil, fmt.Errorf("%w: only builders and admins create projects", ErrPermissionDenied)
	}
	if in.Phases < 0 {
		return nil, invalid("phase count must be >= 0, got %d", in.Phases)
	}

	now := time.Now().UTC()
	p = &domain.Project{
		Name:          in.Name,
		Status:        domain.ProjectUpcoming,
		PlannedBudget: in.PlannedBudget,
		BuilderID:     in.BuilderID,
		ManagerID:     in.ManagerID,
		ClientID:      in.ClientID,
		EndDate:       in.EndDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if verr := p.Validate(); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}

	var delivery notify.Delivery
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLProjectRepo(tx).Create(ctx, p); err != nil {
			return err
		}
		if err := repository.NewSQLTaskRepo(tx).CreateBatch(ctx, domain.NewPhases(p.ID, in.Phases, now)); err != nil {
			return err
		}
		var err error
		delivery, err = s.dispatcher.Persist(ctx, repository.NewSQLNotificationRepo(tx),
			p.StakeholderRecipients(), domain.ProjectCreatedMessage(p.Name), notify.ModeSequential)
		return err
	})
	if err != nil {
		err = classify(err, ErrTransactionFailed)
		return nil, err
	}
	fields["project_id"] = p.ID

	s.dispatcher.Deliver(ctx, delivery)
	s.audit.record(audit.NewEntry(audit.ActionProjectCreate, actor, p.ID, fmt.Sprintf("'%s' with %d phase(s)", p.Name, in.Phases)))
	return p, nil
}

func (s *projectService) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable)
	}
	return p, nil
}

// ListFor returns every project for admins and only the projects the actor
// is a member of otherwise.
func (s *projectService) ListFor(ctx context.Context, actor domain.Principal) ([]*domain.Project, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	list, err := s.projects.ListByMember(ctx, actor.Role, actor.UserID)
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable)
	}
	return list, nil
}

func (s *projectService) Tasks(ctx context.Context, id int64) ([]*domain.Task, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable)
	}
	return tasks, nil
}

func (s *projectService) Timeline(ctx context.Context, id int64) (*domain.Timeline, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.tasks.CountByStatus(ctx, id)
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable)
	}
	tl := &domain.Timeline{
		ProjectID:      p.ID,
		ProjectName:    p.Name,
		CompletedTasks: counts.Completed,
		TotalTasks:     counts.Total,
		StartDate:      p.CreatedAt,
		EndDate:        p.EndDate,
	}
	risk := scheduler.ComputeRisk(scheduler.RiskInput{
		Now:            time.Now(),
		StartDate:      tl.StartDate,
		EndDate:        tl.EndDate,
		CompletedTasks: tl.CompletedTasks,
		TotalTasks:     tl.TotalTasks,
	})
	tl.Risk = risk.Level
	tl.ProgressPct = risk.ProgressPct
	tl.TimeElapsedPct = risk.TimeElapsedPct
	tl.RequiredPerWeek = risk.RequiredPerWeek
	return tl, nil
}

func (s *projectService) Update(ctx context.Context, actor domain.Principal, id int64, upd ProjectUpdate) (updated *domain.Project, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": id}
	defer func() {
		observe(ctx, s.observer, "update-project", startedAt, fields, err)
	}()

	if err = validateActor(actor); err != nil {
		return nil, err
	}

	var delivery notify.Delivery
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLProjectRepo(tx)
		p, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, p); err != nil {
			return err
		}
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.PlannedBudget != nil {
			p.PlannedBudget = *upd.PlannedBudget
		}
		if upd.EndDate != nil {
			p.EndDate = *upd.EndDate
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		p.UpdatedAt = time.Now().UTC()
		if err := projects.Update(ctx, p); err != nil {
			return err
		}
		updated = p

		delivery, err = s.dispatcher.Persist(ctx, repository.NewSQLNotificationRepo(tx),
			p.StakeholderRecipients(), domain.ProjectUpdatedMessage(p.Name), notify.ModeSequential)
		return err
	})
	if err != nil {
		err = classify(err, ErrTransactionFailed)
		return nil, err
	}

	s.dispatcher.Deliver(ctx, delivery)
	s.audit.record(audit.NewEntry(audit.ActionProjectUpdate, actor, id, ""))
	return updated, nil
}

// ReassignManager points the project at a new manager and tells them.
func (s *projectService) ReassignManager(ctx context.Context, actor domain.Principal, id, managerID int64) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": id, "manager_id": managerID}
	defer func() {
		observe(ctx, s.observer, "reassign-manager", startedAt, fields, err)
	}()

	if err = validateActor(actor); err != nil {
		return err
	}
	if managerID <= 0 {
		return invalid("manager id must be > 0")
	}

	var delivery notify.Delivery
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLProjectRepo(tx)
		p, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, p); err != nil {
			return err
		}
		if err := projects.SetManager(ctx, id, managerID); err != nil {
			return err
		}
		recipients := []domain.Recipient{{UserID: managerID, Role: domain.RoleProjectManager}}
		delivery, err = s.dispatcher.Persist(ctx, repository.NewSQLNotificationRepo(tx),
			recipients, domain.ManagerAssignedMessage(id), notify.ModeSequential)
		return err
	})
	if err != nil {
		err = classify(err, ErrTransactionFailed)
		return err
	}

	s.dispatcher.Deliver(ctx, delivery)
	s.audit.record(audit.NewEntry(audit.ActionManagerAssign, actor, id, fmt.Sprintf("manager %d", managerID)))
	return nil
}

// Delete removes the project and, through the cascade, its tasks. The
// client and manager keep a notification of the deletion.
func (s *projectService) Delete(ctx context.Context, actor domain.Principal, id int64) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": id}
	defer func() {
		observe(ctx, s.observer, "delete-project", startedAt, fields, err)
	}()

	if err = validateActor(actor); err != nil {
		return err
	}

	var (
		delivery notify.Delivery
		name     string
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLProjectRepo(tx)
		p, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, p); err != nil {
			return err
		}
		name = p.Name
		if err := projects.Delete(ctx, id); err != nil {
			return err
		}
		delivery, err = s.dispatcher.Persist(ctx, repository.NewSQLNotificationRepo(tx),
			p.StakeholderRecipients(), domain.ProjectDeletedMessage(p.Name), notify.ModeSequential)
		return err
	})
	if err != nil {
		err = classify(err, ErrTransactionFailed)
		return err
	}

	s.dispatcher.Deliver(ctx, delivery)
	s.audit.record(audit.NewEntry(audit.ActionProjectDelete, actor, id, name))
	return nil
}
