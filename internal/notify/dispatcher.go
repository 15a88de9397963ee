package notify

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDelay   = 400 * time.Millisecond
	DefaultWorkers = 4
)

// Sink durably records one notification. Inside a transaction it is the
// tx-scoped notification repository.
type Sink interface {
	Persist(ctx context.Context, userID int64, message string) (*domain.Notification, error)
}

// Deliverer pushes a single message to a single recipient.
type Deliverer interface {
	Deliver(ctx context.Context, to domain.Recipient, message string) error
}

type Mode int

const (
	ModeSequential Mode = iota
	ModeConcurrent
)

func (m Mode) String() string {
	if m == ModeConcurrent {
		return "concurrent"
	}
	return "sequential"
}

// ModeFor picks the delivery mode for a status change: completion fans out,
// everything else is delivered one recipient at a time.
func ModeFor(s domain.ProjectStatus) Mode {
	if s == domain.ProjectCompleted {
		return ModeConcurrent
	}
	return ModeSequential
}

// Delivery is a persisted message waiting to be pushed to its recipients.
type Delivery struct {
	Recipients []domain.Recipient
	Message    string
	Mode       Mode
}

// Report counts the outcome of a Deliver call.
type Report struct {
	Delivered int
	Failed    int
}

type Option func(*Dispatcher)

// WithDelay sets the simulated per-recipient delivery latency.
func WithDelay(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d >= 0 {
			disp.delay = d
		}
	}
}

// WithWorkers bounds the concurrent fan-out.
func WithWorkers(n int) Option {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.workers = n
		}
	}
}

type Dispatcher struct {
	deliverer Deliverer
	delay     time.Duration
	workers   int
	log       zerolog.Logger
}

func NewDispatcher(deliverer Deliverer, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		deliverer: deliverer,
		delay:     DefaultDelay,
		workers:   DefaultWorkers,
		log:       log.With().Str("component", "notify").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Persist writes one row per valid recipient through sink and returns the
// pending delivery. Recipients without a user id are skipped. The first
// sink error aborts the call so the surrounding transaction can roll back.
func (d *Dispatcher) Persist(ctx context.Context, sink Sink, recipients []domain.Recipient, message string, mode Mode) (Delivery, error) {
	out := Delivery{Message: message, Mode: mode}
	for _, r := range recipients {
		if !r.Valid() {
			d.log.Debug().Str("role", string(r.Role)).Msg("skipping notification for unassigned recipient")
			continue
		}
		if _, err := sink.Persist(ctx, r.UserID, message); err != nil {
			return Delivery{}, fmt.Errorf("persisting notification for user %d: %w", r.UserID, err)
		}
		out.Recipients = append(out.Recipients, r)
	}
	return out, nil
}

// Deliver pushes a persisted delivery to every recipient and waits for all of
// them. Failures are logged and counted, never returned.
func (d *Dispatcher) Deliver(ctx context.Context, delivery Delivery) Report {
	if len(delivery.Recipients) == 0 {
		return Report{}
	}

	var delivered, failed atomic.Int32
	send := func(r domain.Recipient) {
		if err := d.deliverOne(ctx, r, delivery.Message); err != nil {
			failed.Add(1)
			d.log.Warn().Err(err).
				Int64("user_id", r.UserID).
				Str("role", string(r.Role)).
				Msg("notification delivery failed")
			return
		}
		delivered.Add(1)
	}

	if delivery.Mode == ModeConcurrent {
		var g errgroup.Group
		g.SetLimit(d.workers)
		for _, r := range delivery.Recipients {
			r := r
			g.Go(func() error {
				send(r)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, r := range delivery.Recipients {
			send(r)
		}
	}

	return Report{Delivered: int(delivered.Load()), Failed: int(failed.Load())}
}

// Dispatch persists and then delivers, for callers outside a transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, sink Sink, recipients []domain.Recipient, message string, mode Mode) (Report, error) {
	delivery, err := d.Persist(ctx, sink, recipients, message, mode)
	if err != nil {
		return Report{}, err
	}
	return d.Deliver(ctx, delivery), nil
}

func (d *Dispatcher) deliverOne(ctx context.Context, r domain.Recipient, message string) error {
	d.log.Debug().Int64("user_id", r.UserID).Msgf("NOTIFICATION[%s]: Sending...", r.Role)
	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	return d.deliverer.Deliver(ctx, r, message)
}
