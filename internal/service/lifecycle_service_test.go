package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/alexanderramin/buildtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceTasks_CompletesLowestIDsFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := h.lifecycle(nil)

	proj, _ := testutil.SeedProject(t, h.db, "Ordering", 5)

	res, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UpdatedCount)
	assert.Equal(t, []domain.TaskStatus{
		domain.TaskCompleted, domain.TaskCompleted,
		domain.TaskPending, domain.TaskPending, domain.TaskPending,
	}, testutil.TaskStatuses(t, h.db, proj.ID))

	res, err = svc.AdvanceTasks(ctx, managerActor, proj.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UpdatedCount)
	assert.Equal(t, []domain.TaskStatus{
		domain.TaskCompleted, domain.TaskCompleted,
		domain.TaskCompleted, domain.TaskCompleted, domain.TaskPending,
	}, testutil.TaskStatuses(t, h.db, proj.ID))
}

func TestAdvanceTasks_CountIsCappedByPending(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)

	proj, _ := testutil.SeedProject(t, h.db, "Cap", 3)

	res, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.UpdatedCount)
	assert.Equal(t, domain.ProjectCompleted, res.Status)
}

func TestAdvanceTasks_StatusDerivation(t *testing.T) {
	tests := []struct {
		name    string
		tasks   int
		advance []int
		want    domain.ProjectStatus
	}{
		{"first completion leaves upcoming", 4, []int{1}, domain.ProjectInProgress},
		{"partial progress stays in progress", 4, []int{1, 2}, domain.ProjectInProgress},
		{"last pending completes", 4, []int{3, 1}, domain.ProjectCompleted},
		{"single call completes all", 2, []int{2}, domain.ProjectCompleted},
		{"zero keeps upcoming", 4, []int{0}, domain.ProjectUpcoming},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			svc := h.lifecycle(nil)
			proj, _ := testutil.SeedProject(t, h.db, tc.name, tc.tasks)

			for _, n := range tc.advance {
				_, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, n)
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, h.status(t, proj.ID))
		})
	}
}

func TestAdvanceTasks_ZeroIsNoOp(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)

	proj, tasks := testutil.SeedProject(t, h.db, "Noop", 3, testutil.WithStatus(domain.ProjectInProgress))
	_, err := h.tasks.MarkCompleted(context.Background(), []int64{tasks[0].ID}, proj.CreatedAt)
	require.NoError(t, err)
	before := testutil.TaskStatuses(t, h.db, proj.ID)

	res, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, res.UpdatedCount)
	assert.False(t, res.Changed)
	assert.Equal(t, domain.ProjectInProgress, res.Status)
	assert.Equal(t, before, testutil.TaskStatuses(t, h.db, proj.ID))
	assert.Equal(t, domain.ProjectInProgress, h.status(t, proj.ID))
	assert.Zero(t, h.countNotifications(t))
	assert.Empty(t, h.audit.actions(), "nothing updated, nothing audited")
}

func TestAdvanceTasks_RepairsStaleStatus(t *testing.T) {
	for _, n := range []int{0, 3} {
		t.Run(fmt.Sprintf("count %d", n), func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			svc := h.lifecycle(nil)

			proj, tasks := testutil.SeedProject(t, h.db, "Stale", 2, testutil.WithStatus(domain.ProjectInProgress))
			_, err := h.tasks.MarkCompleted(ctx, []int64{tasks[0].ID, tasks[1].ID}, proj.CreatedAt)
			require.NoError(t, err)

			res, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, n)
			require.NoError(t, err)
			assert.Zero(t, res.UpdatedCount)
			assert.True(t, res.Changed)
			assert.Equal(t, domain.ProjectInProgress, res.PreviousStatus)
			assert.Equal(t, domain.ProjectCompleted, res.Status)
			assert.Equal(t, domain.ProjectCompleted, h.status(t, proj.ID))
			assert.Equal(t, 2, h.countNotifications(t))
			assert.Equal(t, []string{audit.ActionStatusUpdated}, h.audit.actions())

			again, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, n)
			require.NoError(t, err)
			assert.False(t, again.Changed)
			assert.Equal(t, 2, h.countNotifications(t))
		})
	}
}

func TestAdvanceTasks_IdempotentReentry(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)
	ctx := context.Background()

	proj, _ := testutil.SeedProject(t, h.db, "Reentry", 5)

	first, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, first.UpdatedCount)
	assert.Equal(t, domain.ProjectCompleted, first.Status)
	notified := h.countNotifications(t)

	second, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, 5)
	require.NoError(t, err)
	assert.Zero(t, second.UpdatedCount)
	assert.False(t, second.Changed)
	assert.Equal(t, domain.ProjectCompleted, second.Status)
	assert.Equal(t, notified, h.countNotifications(t), "re-entry must not notify again")
}

func TestAdvanceTasks_ScenarioA_UpcomingToInProgress(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)

	proj, _ := testutil.SeedProject(t, h.db, "Harbour Lofts", 3)

	res, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UpdatedCount)
	assert.Equal(t, domain.ProjectUpcoming, res.PreviousStatus)
	assert.Equal(t, domain.ProjectInProgress, res.Status)
	assert.True(t, res.Changed)

	msg := "Project 'Harbour Lofts' is now in progress."
	for _, id := range []int64{testutil.BuilderID, testutil.ClientID} {
		list := h.notificationsFor(t, id)
		require.Len(t, list, 1, "user %d", id)
		assert.Equal(t, msg, list[0].Message)
	}
	assert.Empty(t, h.notificationsFor(t, testutil.ManagerID), "managers are not told about status changes")

	assert.Equal(t, []int64{testutil.BuilderID, testutil.ClientID}, h.deliverer.recipientIDs())
	assert.Equal(t, 1, h.deliverer.maxSeen, "in-progress delivery is sequential")
	assert.Equal(t, 2, res.Notified)
	assert.Equal(t, []string{audit.ActionStatusUpdated}, h.audit.actions())
}

func TestAdvanceTasks_ScenarioB_InProgressToCompletedFansOut(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)
	ctx := context.Background()

	proj, _ := testutil.SeedProject(t, h.db, "Harbour Lofts", 3)
	_, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, 2)
	require.NoError(t, err)

	deliverer := &recordingDeliverer{barrier: 2, release: make(chan struct{})}
	h.dispatcher = newTestDispatcher(deliverer)
	svc = h.lifecycle(nil)

	res, err := svc.AdvanceTasks(ctx, managerActor, proj.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, domain.ProjectInProgress, res.PreviousStatus)
	assert.Equal(t, domain.ProjectCompleted, res.Status)

	msg := "Project 'Harbour Lofts' has been completed."
	for _, id := range []int64{testutil.BuilderID, testutil.ClientID} {
		list := h.notificationsFor(t, id)
		require.Len(t, list, 2, "user %d", id)
		assert.Equal(t, msg, list[0].Message, "newest first")
	}

	assert.ElementsMatch(t, []int64{testutil.BuilderID, testutil.ClientID}, deliverer.recipientIDs())
	assert.Equal(t, 2, deliverer.maxSeen, "completion delivery runs concurrently")
}

func TestAdvanceTasks_NoPendingTasks(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)

	proj, _ := testutil.SeedProject(t, h.db, "Empty", 0)

	res, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, res.UpdatedCount)
	assert.Equal(t, domain.ProjectUpcoming, res.Status)
}

func TestAdvanceTasks_SkipsUnassignedClient(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)

	proj, _ := testutil.SeedProject(t, h.db, "No Client", 2,
		testutil.WithStakeholders(testutil.BuilderID, testutil.ManagerID, 0))

	res, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, h.countNotifications(t))
	assert.Equal(t, []int64{testutil.BuilderID}, h.deliverer.recipientIDs())
}

func TestAdvanceTasks_Errors(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)
	ctx := context.Background()

	proj, _ := testutil.SeedProject(t, h.db, "Errors", 2)

	_, err := svc.AdvanceTasks(ctx, managerActor, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AdvanceTasks(ctx, managerActor, proj.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AdvanceTasks(ctx, domain.Principal{}, proj.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AdvanceTasks(ctx, domain.Principal{UserID: 1, UserName: "root", Role: "admin"}, proj.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidInput, "roles must use the canonical literal")

	_, err = svc.AdvanceTasks(ctx, clientActor, proj.ID, 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	otherManager := domain.Principal{UserID: 99, UserName: "x", Role: domain.RoleProjectManager}
	_, err = svc.AdvanceTasks(ctx, otherManager, proj.ID, 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.Equal(t, []domain.TaskStatus{domain.TaskPending, domain.TaskPending}, testutil.TaskStatuses(t, h.db, proj.ID))
}

func TestAdvanceTasks_AdminAndBuilderMayOperate(t *testing.T) {
	h := newHarness(t)
	svc := h.lifecycle(nil)
	ctx := context.Background()

	proj, _ := testutil.SeedProject(t, h.db, "Operators", 4)

	for _, actor := range []domain.Principal{adminActor, builderActor} {
		res, err := svc.AdvanceTasks(ctx, actor, proj.ID, 1)
		require.NoError(t, err, actor.String())
		assert.Equal(t, 1, res.UpdatedCount)
	}
}

// Exec order inside AdvanceTasks on an UPCOMING project with both
// recipients assigned: 1 mark tasks, 2 set status, 3 builder row, 4 client row.
func TestAdvanceTasks_RollsBackOnFailureAtEveryWrite(t *testing.T) {
	steps := map[int32]string{
		1: "mark completed",
		2: "set status",
		3: "first notification",
		4: "second notification",
	}
	for failOn, name := range steps {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			proj, _ := testutil.SeedProject(t, h.db, "Atomic", 3)

			uow := &testutil.FailOnNthExecUoW{DB: h.db, FailOn: failOn, Err: errInjected}
			svc := h.lifecycle(uow)

			_, err := svc.AdvanceTasks(context.Background(), managerActor, proj.ID, 2)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransactionFailed)
			assert.ErrorIs(t, err, errInjected)

			assert.Equal(t, []domain.TaskStatus{domain.TaskPending, domain.TaskPending, domain.TaskPending},
				testutil.TaskStatuses(t, h.db, proj.ID), "no partially completed tasks")
			assert.Equal(t, domain.ProjectUpcoming, h.status(t, proj.ID))
			assert.Zero(t, h.countNotifications(t))
			assert.Empty(t, h.deliverer.recipientIDs(), "nothing is delivered for a rolled back change")
			assert.Empty(t, h.audit.actions())
		})
	}
}

func TestAdvanceTasks_ExecCountMatchesWritePlan(t *testing.T) {
	h := newHarness(t)
	proj, _ := testutil.SeedProject(t, h.db, "Plan", 3)

	uow := &testutil.FailOnNthExecUoW{DB: h.db, FailOn: 100, Err: errInjected}
	_, err := h.lifecycle(uow).AdvanceTasks(context.Background(), managerActor, proj.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(4), uow.Calls.Load())
}

func TestAdvanceTasks_CommitFailure(t *testing.T) {
	h := newHarness(t)
	proj, _ := testutil.SeedProject(t, h.db, "Commit", 2)

	uow := &testutil.FailingCommitUoW{DB: h.db, Err: errInjected}
	_, err := h.lifecycle(uow).AdvanceTasks(context.Background(), managerActor, proj.ID, 2)
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, domain.ProjectUpcoming, h.status(t, proj.ID))
	assert.Empty(t, h.deliverer.recipientIDs())
}

func TestAdvanceTasks_AuditFailureDoesNotFailCall(t *testing.T) {
	h := newHarness(t)
	h.audit.err = errInjected
	proj, _ := testutil.SeedProject(t, h.db, "Audit", 2)

	res, err := h.lifecycle(nil).AdvanceTasks(context.Background(), managerActor, proj.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)
}
