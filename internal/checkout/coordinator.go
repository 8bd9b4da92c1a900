// Package checkout coordinates the checkout modal: opening a session for an
// assembled order, simulated completion, failure with retry, and closing.
package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/boost-backend/internal/engine"
	"github.com/xtding233/boost-backend/internal/token"
)

const (
	DefaultCloseGrace      = 300 * time.Millisecond
	DefaultCompletionDelay = 2 * time.Second
	DefaultDashboardPath   = "/dashboard"
	DefaultMaxAttempts     = 3
)

// Navigator moves the client to another page after a finished checkout.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Submitter hands a completed order to whatever processes it.
type Submitter interface {
	Submit(ctx context.Context, o engine.Order, orderID string) error
}

type SubmitterFunc func(ctx context.Context, o engine.Order, orderID string) error

func (f SubmitterFunc) Submit(ctx context.Context, o engine.Order, orderID string) error {
	return f(ctx, o, orderID)
}

// Config wires a Coordinator. Zero fields take the defaults above; Navigator
// and Submitter are optional.
type Config struct {
	CloseGrace      time.Duration
	CompletionDelay time.Duration
	SubmitTimeout   time.Duration
	DashboardPath   string
	MaxAttempts     int
	Backoff         backoff.BackOff
	Clock           Clock
	Navigator       Navigator
	Submitter       Submitter
	Metrics         *Metrics
	Log             logrus.FieldLogger
}

// Session is a snapshot of the coordinator's state.
type Session struct {
	ID        string        `json:"id,omitempty"`
	Token     uint64        `json:"token"`
	Status    Status        `json:"status"`
	ModalOpen bool          `json:"modal_open"`
	Order     *engine.Order `json:"order,omitempty"`
	OrderID   string        `json:"order_id,omitempty"`
	Attempts  int           `json:"attempts"`
	LastError string        `json:"last_error,omitempty"`
}

// Coordinator owns at most one checkout session. It is safe for concurrent
// use; scheduled callbacks run on clock goroutines and collaborators are
// always called without the lock held.
type Coordinator struct {
	cfg    Config
	tokens token.Sequence

	mu       sync.Mutex
	s        Session
	timer    Timer
	pending  uint64 // id of the only timer whose callback may act
	inflight bool   // a submission is running outside the lock
}

func New(cfg Config) *Coordinator {
	if cfg.CloseGrace <= 0 {
		cfg.CloseGrace = DefaultCloseGrace
	}
	if cfg.CompletionDelay <= 0 {
		cfg.CompletionDelay = DefaultCompletionDelay
	}
	if cfg.DashboardPath == "" {
		cfg.DashboardPath = DefaultDashboardPath
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff == nil {
		cfg.Backoff = backoff.NewExponentialBackOff()
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &Coordinator{cfg: cfg, s: Session{Status: StatusIdle}}
}

// Initiate opens a session for o, replacing an open or failed one. The order
// is copied; later edits to the caller's configuration do not reach it.
func (c *Coordinator) Initiate(o engine.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.s.Status.CanTransitionTo(StatusOpen) {
		return ErrIllegalTransition
	}
	c.stopTimer()
	from := c.s.Status
	frozen := engine.Order{Config: o.Config.Clone(), Quote: o.Quote}
	c.s = Session{
		ID:        token.NewSessionID(),
		Token:     c.tokens.Next(),
		Status:    StatusOpen,
		ModalOpen: true,
		Order:     &frozen,
	}
	c.cfg.Backoff.Reset()
	c.transitioned(from)
	return nil
}

// Complete records orderID and starts the simulated completion.
func (c *Coordinator) Complete(orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return ErrEmptyOrderID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.s.Status {
	case StatusOpen:
	case StatusIdle:
		return ErrNoSession
	default:
		return ErrIllegalTransition
	}
	c.s.OrderID = orderID
	c.startAttempt()
	return nil
}

// Retry re-runs a failed completion without waiting for the backoff delay.
func (c *Coordinator) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.s.Status {
	case StatusFailed:
	case StatusIdle:
		return ErrNoSession
	default:
		return ErrIllegalTransition
	}
	c.startAttempt()
	return nil
}

// Close dismisses the modal. An open or failed session goes idle at once and
// its order is dropped after the close grace delay, unless a new session
// started meanwhile. A completing session finishes early: its pending
// completion is rescheduled to run immediately on a clock goroutine.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.s.Status {
	case StatusIdle:
		if c.s.Order == nil {
			return ErrNoSession
		}
		return nil
	case StatusCompleting:
		c.s.ModalOpen = false
		if !c.inflight {
			c.schedule(0, c.onCompletion)
		}
		return nil
	}
	from := c.s.Status
	c.stopTimer()
	c.s.Status = StatusIdle
	c.s.ModalOpen = false
	c.transitioned(from)
	tok := c.s.Token
	c.schedule(c.cfg.CloseGrace, func(id uint64) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.fire(id) || c.s.Token != tok || c.s.Status != StatusIdle {
			return
		}
		c.s.Order = nil
		c.s.OrderID = ""
		c.log().Debug("checkout order cleared")
	})
	return nil
}

// Snapshot returns a copy of the current session.
func (c *Coordinator) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.s
	if s.Order != nil {
		o := engine.Order{Config: s.Order.Config.Clone(), Quote: s.Order.Quote}
		s.Order = &o
	}
	return s
}

// startAttempt moves to Completing and schedules the submission. mu held.
func (c *Coordinator) startAttempt() {
	from := c.s.Status
	c.stopTimer()
	c.s.Status = StatusCompleting
	c.s.Attempts++
	c.transitioned(from)
	c.schedule(c.cfg.CompletionDelay, c.onCompletion)
}

func (c *Coordinator) onCompletion(id uint64) {
	c.mu.Lock()
	if !c.fire(id) || c.s.Status != StatusCompleting {
		c.mu.Unlock()
		return
	}
	c.submitLocked()
}

// submitLocked runs the submission for the current attempt and applies its
// outcome. Called with mu held; returns with mu released.
func (c *Coordinator) submitLocked() {
	c.inflight = true
	tok := c.s.Token
	o := engine.Order{Config: c.s.Order.Config.Clone(), Quote: c.s.Order.Quote}
	orderID := c.s.OrderID
	c.mu.Unlock()

	err := c.submit(o, orderID)

	c.mu.Lock()
	c.inflight = false
	if c.s.Token != tok || c.s.Status != StatusCompleting {
		c.mu.Unlock()
		return
	}
	c.cfg.Metrics.submission(err)
	if err != nil {
		c.failLocked(err)
		c.mu.Unlock()
		return
	}
	c.s.Status = StatusIdle
	c.s.ModalOpen = false
	c.s.Attempts = 0
	c.transitioned(StatusCompleting)
	c.log().WithField("order_id", orderID).Info("checkout completed")
	path := c.cfg.DashboardPath
	c.mu.Unlock()

	// the order stays visible to the navigator and is cleared afterwards
	if c.cfg.Navigator != nil {
		c.cfg.Navigator.Navigate(path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Token == tok && c.s.Status == StatusIdle {
		c.s.Order = nil
		c.s.OrderID = ""
	}
}

// failLocked records a failed attempt and schedules a retry while attempts remain.
func (c *Coordinator) failLocked(err error) {
	c.s.Status = StatusFailed
	c.s.LastError = err.Error()
	c.transitioned(StatusCompleting)
	entry := c.log().WithError(err)
	if c.s.Attempts >= c.cfg.MaxAttempts {
		entry.Warn("checkout failed, no attempts left")
		return
	}
	wait := c.cfg.Backoff.NextBackOff()
	if wait == backoff.Stop {
		entry.Warn("checkout failed, backoff exhausted")
		return
	}
	entry.WithField("retry_in", wait).Warn("checkout failed, retry scheduled")
	c.schedule(wait, func(id uint64) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.fire(id) || c.s.Status != StatusFailed {
			return
		}
		c.startAttempt()
	})
}

func (c *Coordinator) submit(o engine.Order, orderID string) error {
	if c.cfg.Submitter == nil {
		return nil
	}
	ctx := context.Background()
	if c.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SubmitTimeout)
		defer cancel()
	}
	return c.cfg.Submitter.Submit(ctx, o, orderID)
}

// schedule replaces any pending timer. mu held.
func (c *Coordinator) schedule(d time.Duration, f func(id uint64)) {
	c.stopTimer()
	id := c.tokens.Next()
	c.pending = id
	c.timer = c.cfg.Clock.AfterFunc(d, func() { f(id) })
}

// fire reports whether the callback with id is still current and consumes it. mu held.
func (c *Coordinator) fire(id uint64) bool {
	if id == 0 || c.pending != id {
		return false
	}
	c.pending = 0
	c.timer = nil
	return true
}

func (c *Coordinator) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = nil
	c.pending = 0
}

func (c *Coordinator) transitioned(from Status) {
	c.cfg.Metrics.transition(from, c.s.Status)
	c.log().WithField("from", from).Info("checkout transition")
}

func (c *Coordinator) log() *logrus.Entry {
	return c.cfg.Log.WithFields(logrus.Fields{
		"session":  c.s.ID,
		"token":    c.s.Token,
		"status":   c.s.Status,
		"attempts": c.s.Attempts,
	})
}
