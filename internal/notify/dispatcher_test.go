package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	userIDs []int64
	failOn  int64
}

func (s *recordingSink) Persist(_ context.Context, userID int64, message string) (*domain.Notification, error) {
	if userID == s.failOn {
		return nil, errors.New("sink down")
	}
	s.userIDs = append(s.userIDs, userID)
	return &domain.Notification{RecipientID: userID, Message: message}, nil
}

type recordingDeliverer struct {
	mu       sync.Mutex
	got      []int64
	failFor  int64
	inFlight int
	maxSeen  int
	hold     time.Duration
}

func (d *recordingDeliverer) Deliver(_ context.Context, to domain.Recipient, _ string) error {
	d.mu.Lock()
	d.inFlight++
	if d.inFlight > d.maxSeen {
		d.maxSeen = d.inFlight
	}
	d.mu.Unlock()

	time.Sleep(d.hold)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	if to.UserID == d.failFor {
		return errors.New("unreachable")
	}
	d.got = append(d.got, to.UserID)
	return nil
}

func recipients(ids ...int64) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Recipient{UserID: id, Role: domain.RoleClient})
	}
	return out
}

func TestPersist_SkipsUnassignedRecipients(t *testing.T) {
	disp := NewDispatcher(&recordingDeliverer{}, zerolog.Nop(), WithDelay(0))
	sink := &recordingSink{}

	delivery, err := disp.Persist(context.Background(), sink, recipients(5, 0, -1, 6), "hello", ModeSequential)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, sink.userIDs)
	assert.Len(t, delivery.Recipients, 2)
	assert.Equal(t, "hello", delivery.Message)
}

func TestPersist_SinkErrorAborts(t *testing.T) {
	disp := NewDispatcher(&recordingDeliverer{}, zerolog.Nop(), WithDelay(0))
	sink := &recordingSink{failOn: 6}

	_, err := disp.Persist(context.Background(), sink, recipients(5, 6, 7), "hello", ModeSequential)
	require.Error(t, err)
	assert.Equal(t, []int64{5}, sink.userIDs, "recipients after the failure are not persisted")
}

func TestDeliver_SequentialPreservesOrder(t *testing.T) {
	rec := &recordingDeliverer{}
	disp := NewDispatcher(rec, zerolog.Nop(), WithDelay(0))

	report := disp.Deliver(context.Background(), Delivery{Recipients: recipients(3, 1, 2), Message: "m", Mode: ModeSequential})
	assert.Equal(t, Report{Delivered: 3}, report)
	assert.Equal(t, []int64{3, 1, 2}, rec.got)
	assert.Equal(t, 1, rec.maxSeen)
}

func TestDeliver_ConcurrentRespectsWorkerLimit(t *testing.T) {
	rec := &recordingDeliverer{hold: 20 * time.Millisecond}
	disp := NewDispatcher(rec, zerolog.Nop(), WithDelay(0), WithWorkers(2))

	report := disp.Deliver(context.Background(), Delivery{Recipients: recipients(1, 2, 3, 4, 5, 6), Message: "m", Mode: ModeConcurrent})
	assert.Equal(t, 6, report.Delivered)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6}, rec.got)
	assert.LessOrEqual(t, rec.maxSeen, 2)
}

func TestDeliver_FailuresAreCountedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingDeliverer{failFor: 2}
	disp := NewDispatcher(rec, zerolog.New(&buf), WithDelay(0))

	report := disp.Deliver(context.Background(), Delivery{Recipients: recipients(1, 2), Message: "m", Mode: ModeConcurrent})
	assert.Equal(t, Report{Delivered: 1, Failed: 1}, report)
	assert.Contains(t, buf.String(), "notification delivery failed")
}

func TestDeliver_CancelledContextFailsPendingDeliveries(t *testing.T) {
	rec := &recordingDeliverer{}
	disp := NewDispatcher(rec, zerolog.Nop(), WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := disp.Deliver(ctx, Delivery{Recipients: recipients(1, 2), Message: "m", Mode: ModeSequential})
	assert.Equal(t, Report{Failed: 2}, report)
	assert.Empty(t, rec.got)
}

func TestDispatch_PersistsThenDelivers(t *testing.T) {
	rec := &recordingDeliverer{}
	sink := &recordingSink{}
	disp := NewDispatcher(rec, zerolog.Nop(), WithDelay(0))

	report, err := disp.Dispatch(context.Background(), sink, recipients(9, 0), "m", ModeFor(domain.ProjectInProgress))
	require.NoError(t, err)
	assert.Equal(t, Report{Delivered: 1}, report)
	assert.Equal(t, []int64{9}, sink.userIDs)
	assert.Equal(t, []int64{9}, rec.got)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeConcurrent, ModeFor(domain.ProjectCompleted))
	assert.Equal(t, ModeSequential, ModeFor(domain.ProjectInProgress))
	assert.Equal(t, "concurrent", ModeConcurrent.String())
}

func TestLogDeliverer_WritesNotificationLine(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogDeliverer(zerolog.New(&buf))

	require.NoError(t, d.Deliver(context.Background(), domain.Recipient{UserID: 4, Role: domain.RoleBuilder}, "Project 'X' has been completed."))
	assert.Contains(t, buf.String(), "NOTIFICATION[BUILDER]: Project 'X' has been completed.")
	assert.Contains(t, buf.String(), `"user_id":4`)
}
