package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/alexanderramin/buildtrack/internal/db"
	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/alexanderramin/buildtrack/internal/notify"
	"github.com/alexanderramin/buildtrack/internal/repository"
	"github.com/alexanderramin/buildtrack/internal/testutil"
	"github.com/rs/zerolog"
)

var (
	managerActor = domain.Principal{UserID: testutil.ManagerID, UserName: "maria", Role: domain.RoleProjectManager}
	builderActor = domain.Principal{UserID: testutil.BuilderID, UserName: "bob", Role: domain.RoleBuilder}
	clientActor  = domain.Principal{UserID: testutil.ClientID, UserName: "carla", Role: domain.RoleClient}
	adminActor   = domain.Principal{UserID: 1, UserName: "root", Role: domain.RoleAdmin}
)

// recordingDeliverer captures deliveries. With barrier > 0 each delivery
// waits until barrier deliveries are in flight at once (or a timeout), which
// only succeeds when the dispatcher fans out concurrently.
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []domain.Recipient
	messages  []string
	inFlight  int
	maxSeen   int

	barrier int
	release chan struct{}
	once    sync.Once
}

func (d *recordingDeliverer) Deliver(_ context.Context, to domain.Recipient, message string) error {
	d.mu.Lock()
	d.inFlight++
	if d.inFlight > d.maxSeen {
		d.maxSeen = d.inFlight
	}
	reached := d.barrier > 0 && d.inFlight >= d.barrier
	d.mu.Unlock()

	if d.barrier > 0 {
		if reached {
			d.once.Do(func() { close(d.release) })
		}
		select {
		case <-d.release:
		case <-time.After(2 * time.Second):
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	d.delivered = append(d.delivered, to)
	d.messages = append(d.messages, message)
	return nil
}

func (d *recordingDeliverer) recipientIDs() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int64, 0, len(d.delivered))
	for _, r := range d.delivered {
		ids = append(ids, r.UserID)
	}
	return ids
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (m *memoryAudit) Append(e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type harness struct {
	db            *sql.DB
	projects      repository.ProjectRepo
	tasks         repository.TaskRepo
	notifications repository.NotificationRepo
	uow           db.UnitOfWork
	deliverer     *recordingDeliverer
	dispatcher    *notify.Dispatcher
	audit         *memoryAudit
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	deliverer := &recordingDeliverer{}
	return &harness{
		db:            database,
		projects:      repository.NewSQLProjectRepo(database),
		tasks:         repository.NewSQLTaskRepo(database),
		notifications: repository.NewSQLNotificationRepo(database),
		uow:           testutil.NewTestUoW(database),
		deliverer:     deliverer,
		dispatcher:    notify.NewDispatcher(deliverer, zerolog.Nop(), notify.WithDelay(0), notify.WithWorkers(4)),
		audit:         &memoryAudit{},
	}
}

func (h *harness) lifecycle(uow db.UnitOfWork) LifecycleService {
	if uow == nil {
		uow = h.uow
	}
	return NewLifecycleService(uow, h.dispatcher, h.audit, zerolog.Nop())
}

func (h *harness) spend() SpendService {
	return NewSpendService(h.projects, h.audit, zerolog.Nop())
}

func (h *harness) projectService(uow db.UnitOfWork) ProjectService {
	if uow == nil {
		uow = h.uow
	}
	return NewProjectService(h.projects, h.tasks, uow, h.dispatcher, h.audit, zerolog.Nop())
}

func (h *harness) notificationsFor(t *testing.T, userID int64) []*domain.Notification {
	t.Helper()
	list, err := h.notifications.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("listing notifications: %v", err)
	}
	return list
}

func (h *harness) countNotifications(t *testing.T) int {
	t.Helper()
	var n int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM notifications`).Scan(&n); err != nil {
		t.Fatalf("counting notifications: %v", err)
	}
	return n
}

func (h *harness) status(t *testing.T, projectID int64) domain.ProjectStatus {
	t.Helper()
	s, err := h.projects.GetStatus(context.Background(), projectID)
	if err != nil {
		t.Fatalf("reading status: %v", err)
	}
	return s
}

var errInjected = errors.New("injected failure")

func newTestDispatcher(d notify.Deliverer) *notify.Dispatcher {
	return notify.NewDispatcher(d, zerolog.Nop(), notify.WithDelay(0), notify.WithWorkers(4))
}
