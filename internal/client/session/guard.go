// Package session implements the client-side session guard: it holds the
// authenticated identity and bearer token in process memory, mirrors them to
// a durable local cache, and enforces an idle window that is deliberately
// stricter than the token's server-side lifetime. The server never learns
// about this window; the guard simply discards the token before the server
// would reject it.
package session

import (
	"sync"
	"time"
)

// State enumerates the guard's states.
type State int

const (
	// StateAnonymous means no identity is held.
	StateAnonymous State = iota
	// StateAuthenticated means an identity and token are held and live.
	StateAuthenticated
)

// Identity is the client-side snapshot of the authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Record is the durable session snapshot. StartedAt anchors the idle window;
// reopening the application does not reset it.
type Record struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	StartedAt time.Time `json:"startedAt"`
}

// Store persists the session record across process restarts.
type Store interface {
	Load() (*Record, error)
	Save(record *Record) error
	Clear() error
}

// Guard owns the session state machine. All transitions converge on the same
// mutex-guarded clear operation, so an explicit logout and the expiry timer
// cannot race and calling logout twice is safe.
type Guard struct {
	mu     sync.Mutex
	store  Store
	idle   time.Duration
	clock  func() time.Time
	timer  *time.Timer
	record *Record

	// onExpire, when set, fires after the idle timer clears the session.
	onExpire func()
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(g *Guard) { g.clock = clock }
}

// WithExpiryHook registers a callback invoked after timer-driven logout.
func WithExpiryHook(hook func()) Option {
	return func(g *Guard) { g.onExpire = hook }
}

// NewGuard constructs a Guard and restores any persisted session. A record
// whose idle window already passed is purged; a live one re-enters
// Authenticated with the timer set to the remaining time, not a fresh window.
func NewGuard(store Store, idle time.Duration, opts ...Option) (*Guard, error) {
	g := &Guard{store: store, idle: idle, clock: time.Now}
	for _, opt := range opts {
		opt(g)
	}

	record, err := store.Load()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return g, nil
	}
	remaining := g.idle - g.clock().Sub(record.StartedAt)
	if remaining <= 0 {
		if err := store.Clear(); err != nil {
			return nil, err
		}
		return g, nil
	}
	g.record = record
	g.timer = time.AfterFunc(remaining, g.expire)
	return g, nil
}

// Login enters Authenticated, persists the session, and schedules the idle
// timer. Any previous session is replaced.
func (g *Guard) Login(identity Identity, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimerLocked()
	record := &Record{Identity: identity, Token: token, StartedAt: g.clock()}
	if err := g.store.Save(record); err != nil {
		return err
	}
	g.record = record
	g.timer = time.AfterFunc(g.idle, g.expire)
	return nil
}

// Logout clears the session. Safe to call in any state; the second call is a
// no-op.
func (g *Guard) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clearLocked()
}

// State reports the current state, accounting for an idle window that lapsed
// before the timer had a chance to fire.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.liveLocked() {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Token returns the held bearer token while authenticated.
func (g *Guard) Token() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.liveLocked() {
		return "", false
	}
	return g.record.Token, true
}

// Current returns the held identity while authenticated.
func (g *Guard) Current() (Identity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.liveLocked() {
		return Identity{}, false
	}
	return g.record.Identity, true
}

// Remaining reports how much of the idle window is left.
func (g *Guard) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.record == nil {
		return 0
	}
	remaining := g.idle - g.clock().Sub(g.record.StartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *Guard) expire() {
	g.mu.Lock()
	expired := g.record != nil && g.clock().Sub(g.record.StartedAt) >= g.idle
	if expired {
		_ = g.clearLocked()
	}
	hook := g.onExpire
	g.mu.Unlock()
	if expired && hook != nil {
		hook()
	}
}

// liveLocked treats a session whose window lapsed as already gone, even if
// the timer callback has not run yet.
func (g *Guard) liveLocked() bool {
	return g.record != nil && g.clock().Sub(g.record.StartedAt) < g.idle
}

func (g *Guard) clearLocked() error {
	if g.record == nil {
		return nil
	}
	g.stopTimerLocked()
	g.record = nil
	return g.store.Clear()
}

func (g *Guard) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
