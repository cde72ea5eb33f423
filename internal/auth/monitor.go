package auth

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/trilhalab/portalctl/internal/log"
	"github.com/trilhalab/portalctl/internal/session"
	"github.com/trilhalab/portalctl/internal/token"
)

// State is the observable session state.
type State int

const (
	// StateLoading is the initial state, before the first store read.
	StateLoading State = iota
	// StateAuthenticated means a live session is present.
	StateAuthenticated
	// StateAnonymous means no session exists.
	StateAnonymous
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is one observed session state. Session is non-nil only when
// State is StateAuthenticated.
type Snapshot struct {
	State   State
	Session *session.Session
}

// MonitorOptions tunes the session monitor.
type MonitorOptions struct {
	// SettleDelay is waited before the initial store read, so a concurrent
	// writer finishing a save is not observed mid-flight.
	SettleDelay time.Duration

	// SweepInterval is how often token expiry is re-checked independent of
	// store change events.
	SweepInterval time.Duration

	// SweepJitter spreads sweep ticks by a random amount in [0, SweepJitter)
	// so multiple monitors do not sweep in lockstep.
	SweepJitter time.Duration
}

// DefaultMonitorOptions returns the standard monitor tuning.
func DefaultMonitorOptions() MonitorOptions {
	return MonitorOptions{
		SettleDelay:   100 * time.Millisecond,
		SweepInterval: time.Minute,
		SweepJitter:   5 * time.Second,
	}
}

// Monitor mirrors the session store into observable state. It re-reads the
// store when another process mutates the slot, and runs a periodic sweep
// that logs out expired sessions even when no store event arrives.
type Monitor struct {
	svc    *Service
	store  *session.Store
	logger *log.Logger
	opts   MonitorOptions

	mu   sync.RWMutex
	snap Snapshot
	subs []chan Snapshot

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a stopped monitor in the loading state.
func NewMonitor(svc *Service, store *session.Store, opts MonitorOptions, logger *log.Logger) *Monitor {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultMonitorOptions().SweepInterval
	}
	return &Monitor{
		svc:    svc,
		store:  store,
		logger: logger,
		opts:   opts,
		snap:   Snapshot{State: StateLoading},
	}
}

// Start begins watching. Stop releases everything Start acquired.
func (m *Monitor) Start(ctx context.Context) error {
	changes, err := m.store.Subscribe()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, changes)
	return nil
}

// Stop cancels the monitor and waits for its goroutine to exit.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}

func (m *Monitor) run(ctx context.Context, changes <-chan struct{}) {
	defer close(m.done)

	if m.opts.SettleDelay > 0 {
		select {
		case <-time.After(m.opts.SettleDelay):
		case <-ctx.Done():
			return
		}
	}
	m.refresh()

	timer := time.NewTimer(m.nextSweep())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			m.refresh()
		case <-timer.C:
			m.sweep()
			timer.Reset(m.nextSweep())
		}
	}
}

func (m *Monitor) nextSweep() time.Duration {
	d := m.opts.SweepInterval
	if m.opts.SweepJitter > 0 {
		d += rand.N(m.opts.SweepJitter)
	}
	return d
}

// refresh re-reads the store and publishes the resulting state. Loading a
// corrupt or expired slot self-heals inside the store, so the outcome here
// is always a clean authenticated-or-anonymous answer.
func (m *Monitor) refresh() {
	if sess := m.svc.CurrentUser(); sess != nil {
		m.setSnapshot(Snapshot{State: StateAuthenticated, Session: sess})
	} else {
		m.setSnapshot(Snapshot{State: StateAnonymous})
	}
}

// sweep re-checks token expiry on the current session. The store's own
// load path would catch this too; the sweep exists so an idle process
// drops an expired session without waiting for the next request.
func (m *Monitor) sweep() {
	m.mu.RLock()
	cur := m.snap
	m.mu.RUnlock()

	if cur.State == StateAuthenticated && token.IsExpired(cur.Session.Token) {
		m.logger.Debug("session token expired, logging out")
		m.svc.Logout()
		m.setSnapshot(Snapshot{State: StateAnonymous})
		return
	}
	m.refresh()
}

// Login mirrors Service.Login and updates the observable state in the same
// call, so observers never read a stale snapshot after a successful login.
func (m *Monitor) Login(ctx context.Context, email, password string) (*session.Session, error) {
	sess, err := m.svc.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.setSnapshot(Snapshot{State: StateAuthenticated, Session: sess})
	return sess, nil
}

// Logout mirrors Service.Logout and updates the observable state
// synchronously with the store mutation.
func (m *Monitor) Logout() {
	m.svc.Logout()
	m.setSnapshot(Snapshot{State: StateAnonymous})
}

// Current returns the latest snapshot.
func (m *Monitor) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Subscribe returns a channel receiving every state transition. The
// channel is buffered; a slow consumer loses intermediate snapshots, never
// the monitor.
func (m *Monitor) Subscribe() <-chan Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Snapshot, 8)
	m.subs = append(m.subs, ch)
	return ch
}

func (m *Monitor) setSnapshot(next Snapshot) {
	m.mu.Lock()
	if sameSnapshot(m.snap, next) {
		m.mu.Unlock()
		return
	}
	m.snap = next
	subs := make([]chan Snapshot, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- next:
		default:
		}
	}
}

func sameSnapshot(a, b Snapshot) bool {
	if a.State != b.State {
		return false
	}
	if a.Session == nil || b.Session == nil {
		return a.Session == b.Session
	}
	return a.Session.ID == b.Session.ID && a.Session.Token == b.Session.Token
}
