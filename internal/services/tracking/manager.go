package tracking

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/schedule"
)

// Manager owns the trackers of every order in flight
type Manager struct {
	sched schedule.Scheduler
	hooks Hooks
	opts  Options
	log   *logger.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewManager(sched schedule.Scheduler, hooks Hooks, opts Options, log *logger.Logger) *Manager {
	return &Manager{
		sched:    sched,
		hooks:    hooks,
		opts:     opts,
		log:      log,
		trackers: make(map[string]*Tracker),
	}
}

// Track starts tracking order and returns its tracker. An order that is
// already tracked keeps its existing tracker.
func (m *Manager) Track(order models.Order) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.trackers[order.ID]; ok {
		return t
	}

	opts := m.opts
	if m.opts.Rand != nil {
		// trackers tick concurrently, so each gets its own source
		opts.Rand = rand.New(rand.NewPCG(m.opts.Rand.Uint64(), m.opts.Rand.Uint64()))
	}

	t := NewTracker(order, m.sched, m.hooks, opts, m.log)
	m.trackers[order.ID] = t
	t.Start()
	return t
}

func (m *Manager) Get(orderID string) (*Tracker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trackers[orderID]
	return t, ok
}

// Stop stops and forgets the tracker of an order
func (m *Manager) Stop(orderID string) bool {
	m.mu.Lock()
	t, ok := m.trackers[orderID]
	delete(m.trackers, orderID)
	m.mu.Unlock()

	if ok {
		t.Stop()
	}
	return ok
}

// StopAll stops every tracker, e.g. on shutdown
func (m *Manager) StopAll() {
	m.mu.Lock()
	trackers := make([]*Tracker, 0, len(m.trackers))
	for id, t := range m.trackers {
		trackers = append(trackers, t)
		delete(m.trackers, id)
	}
	m.mu.Unlock()

	for _, t := range trackers {
		t.Stop()
	}
}

// Active returns the IDs of orders whose tracker is still running
func (m *Manager) Active() []string {
	m.mu.Lock()
	trackers := make([]*Tracker, 0, len(m.trackers))
	for _, t := range m.trackers {
		trackers = append(trackers, t)
	}
	m.mu.Unlock()

	var ids []string
	for _, t := range trackers {
		if t.Snapshot().Running {
			ids = append(ids, t.OrderID())
		}
	}
	sort.Strings(ids)
	return ids
}

// StatusLog is an append-only status history, e.g. the Postgres order_status_log
type StatusLog interface {
	RecordStatus(ctx context.Context, orderID string, status models.OrderStatus, changedBy string, at time.Time) error
}

// LogRecorder records status changes into a status log. Drivers are not logged.
func LogRecorder(l StatusLog) StatusRecorder {
	return logRecorder{log: l}
}

type logRecorder struct {
	log StatusLog
}

func (r logRecorder) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, changedBy string, at time.Time) error {
	return r.log.RecordStatus(ctx, orderID, status, changedBy, at)
}

func (logRecorder) AssignDriver(context.Context, string, models.Driver) error {
	return nil
}
