package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/alexanderramin/buildtrack/internal/repository"
	"github.com/rs/zerolog"
)

type spendService struct {
	projects repository.ProjectRepo
	audit    *auditRecorder
	observer UseCaseObserver
}

func NewSpendService(projects repository.ProjectRepo, auditLog audit.Log, log zerolog.Logger, observers ...UseCaseObserver) SpendService {
	return &spendService{
		projects: projects,
		audit:    newAuditRecorder(auditLog, log),
		observer: useCaseObserverOrNoop(observers),
	}
}

// AccrueSpend adds delta to the project's actual spend in a single store
// statement and returns the new total. Negative deltas are corrections.
func (s *spendService) AccrueSpend(ctx context.Context, actor domain.Principal, projectID int64, delta float64) (total float64, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": projectID, "delta": delta}
	defer func() {
		observe(ctx, s.observer, "accrue-spend", startedAt, fields, err)
	}()

	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, invalid("spend delta must be a finite number")
	}
	if err = validateActor(actor); err != nil {
		return 0, err
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, classify(err, ErrStoreUnavailable)
	}
	if err = requireOperator(actor, p); err != nil {
		return 0, err
	}

	total, err = s.projects.AddSpend(ctx, projectID, delta)
	if err != nil {
		return 0, classify(err, ErrStoreUnavailable)
	}
	fields["total"] = total

	s.audit.record(audit.NewEntry(audit.ActionSpendUpdated, actor, projectID,
		fmt.Sprintf("project '%s': %+.2f, total %.2f", p.Name, delta, total)))
	return total, nil
}

// SetSpend overwrites the actual spend. Admin only.
func (s *spendService) SetSpend(ctx context.Context, actor domain.Principal, projectID int64, amount float64) error {
	if err := validateActor(actor); err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: only admins can overwrite spend", ErrPermissionDenied)
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return invalid("spend must be a finite amount >= 0")
	}
	previous, err := s.projects.GetSpend(ctx, projectID)
	if err != nil {
		return classify(err, ErrStoreUnavailable)
	}
	if err := s.projects.SetSpend(ctx, projectID, amount); err != nil {
		return classify(err, ErrStoreUnavailable)
	}
	s.audit.record(audit.NewEntry(audit.ActionSpendUpdated, actor, projectID,
		fmt.Sprintf("set from %.2f to %.2f", previous, amount)))
	return nil
}

func (s *spendService) BudgetStatus(ctx context.Context, projectID int64) (domain.BudgetStatus, error) {
	report, err := s.Budget(ctx, projectID)
	if err != nil {
		return "", err
	}
	return report.Status, nil
}

func (s *spendService) Budget(ctx context.Context, projectID int64) (*BudgetReport, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable)
	}
	return &BudgetReport{
		ProjectID:     p.ID,
		ProjectName:   p.Name,
		PlannedBudget: p.PlannedBudget,
		ActualSpend:   p.ActualSpend,
		Status:        p.BudgetStatus(),
	}, nil
}
