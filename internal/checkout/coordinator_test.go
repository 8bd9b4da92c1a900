package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/boost-backend/internal/engine"
	"github.com/xtding233/boost-backend/internal/order"
	"github.com/xtding233/boost-backend/internal/pricing"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type harness struct {
	c       *Coordinator
	clock   *manualClock
	nav     *recorder
	metrics *Metrics
}

func newHarness(t *testing.T, submit SubmitterFunc, maxAttempts int) harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	h := harness{clock: &manualClock{}, nav: &recorder{}, metrics: NewMetrics(prometheus.NewRegistry())}
	cfg := Config{
		Clock:       h.clock,
		Navigator:   h.nav,
		Metrics:     h.metrics,
		Log:         log,
		MaxAttempts: maxAttempts,
		Backoff:     backoff.NewConstantBackOff(time.Second),
	}
	if submit != nil {
		cfg.Submitter = submit
	}
	h.c = New(cfg)
	return h
}

func sampleOrder(product order.Product) engine.Order {
	return engine.Order{Config: order.Config{
		Product: product,
		Server:  "EUW",
		Options: pricing.Options{Flags: map[string]bool{"streaming": true}},
		Details: order.Placement{Matches: 5},
	}}
}

func TestHappyPath(t *testing.T) {
	h := newHarness(t, nil, 0)

	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	s := h.c.Snapshot()
	assert.Equal(t, StatusOpen, s.Status)
	assert.True(t, s.ModalOpen)
	assert.NotEmpty(t, s.ID)
	require.NotNil(t, s.Order)
	assert.Empty(t, s.OrderID)

	require.NoError(t, h.c.Complete("ORD-12345"))
	s = h.c.Snapshot()
	assert.Equal(t, StatusCompleting, s.Status)
	assert.True(t, s.ModalOpen)
	assert.Equal(t, "ORD-12345", s.OrderID)

	h.clock.Advance(DefaultCompletionDelay - time.Millisecond)
	assert.Empty(t, h.nav.Paths())

	h.clock.Advance(time.Millisecond)
	s = h.c.Snapshot()
	assert.Equal(t, StatusIdle, s.Status)
	assert.False(t, s.ModalOpen)
	assert.Nil(t, s.Order)
	assert.Empty(t, s.OrderID)
	assert.Equal(t, []string{"/dashboard"}, h.nav.Paths())

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.submissions.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.open))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.transitions.WithLabelValues("COMPLETING", "IDLE")))
}

func TestCloseThenReopenKeepsNewOrder(t *testing.T) {
	h := newHarness(t, nil, 0)
	a := sampleOrder(order.ProductPlacement)
	b := sampleOrder(order.ProductNetWins)

	require.NoError(t, h.c.Initiate(a))
	require.NoError(t, h.c.Close())
	s := h.c.Snapshot()
	assert.Equal(t, StatusIdle, s.Status)
	assert.False(t, s.ModalOpen)
	require.NotNil(t, s.Order, "order survives until the grace delay")

	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.c.Initiate(b))
	h.clock.Advance(DefaultCloseGrace)

	s = h.c.Snapshot()
	assert.Equal(t, StatusOpen, s.Status)
	require.NotNil(t, s.Order)
	assert.Equal(t, order.ProductNetWins, s.Order.Config.Product)
}

func TestCloseClearsAfterGrace(t *testing.T) {
	h := newHarness(t, nil, 0)
	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	require.NoError(t, h.c.Close())
	assert.NoError(t, h.c.Close(), "closing again during the grace delay is a no-op")

	h.clock.Advance(DefaultCloseGrace)
	assert.Nil(t, h.c.Snapshot().Order)
	assert.ErrorIs(t, h.c.Close(), ErrNoSession)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.open))
}

func TestCloseWhileCompletingFinishesEarly(t *testing.T) {
	h := newHarness(t, nil, 0)
	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	require.NoError(t, h.c.Complete("ORD-1"))

	assert.ErrorIs(t, h.c.Initiate(sampleOrder(order.ProductNetWins)), ErrIllegalTransition)

	require.NoError(t, h.c.Close())
	s := h.c.Snapshot()
	assert.Equal(t, StatusCompleting, s.Status)
	assert.False(t, s.ModalOpen)
	assert.Empty(t, h.nav.Paths(), "submission runs on the clock, not inside Close")
	assert.Equal(t, 1, h.clock.Pending(), "the delayed timer was replaced")

	h.clock.Advance(0)
	assert.Equal(t, []string{"/dashboard"}, h.nav.Paths())
	assert.Equal(t, StatusIdle, h.c.Snapshot().Status)

	// the completion timer scheduled by Complete is stale
	h.clock.Advance(time.Minute)
	assert.Len(t, h.nav.Paths(), 1)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestCloseDoesNotWaitForSlowSubmission(t *testing.T) {
	log, _ := test.NewNullLogger()
	started := make(chan struct{})
	release := make(chan struct{})
	c := New(Config{
		CompletionDelay: time.Hour,
		Log:             log,
		Submitter: SubmitterFunc(func(context.Context, engine.Order, string) error {
			close(started)
			<-release
			return nil
		}),
	})
	require.NoError(t, c.Initiate(sampleOrder(order.ProductPlacement)))
	require.NoError(t, c.Complete("ORD-1"))

	done := make(chan error, 1)
	go func() { done <- c.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(release)
		t.Fatal("Close blocked on the submission")
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("submission never started")
	}
	assert.Equal(t, StatusCompleting, c.Snapshot().Status)
	assert.NoError(t, c.Close(), "closing again while submitting is a no-op")

	close(release)
	require.Eventually(t, func() bool { return c.Snapshot().Status == StatusIdle }, time.Second, 5*time.Millisecond)
}

func TestNavigatorSeesOrderBeforeItIsCleared(t *testing.T) {
	log, _ := test.NewNullLogger()
	clock := &manualClock{}
	var c *Coordinator
	var during Session
	c = New(Config{
		Clock: clock,
		Log:   log,
		Navigator: NavigatorFunc(func(string) {
			during = c.Snapshot()
		}),
	})
	require.NoError(t, c.Initiate(sampleOrder(order.ProductPlacement)))
	require.NoError(t, c.Complete("ORD-5"))
	clock.Advance(DefaultCompletionDelay)

	assert.Equal(t, StatusIdle, during.Status)
	assert.False(t, during.ModalOpen)
	require.NotNil(t, during.Order)
	assert.Equal(t, "ORD-5", during.OrderID)

	after := c.Snapshot()
	assert.Nil(t, after.Order)
	assert.Empty(t, after.OrderID)
}

func TestFailedRetryWithBackoff(t *testing.T) {
	calls := 0
	var seen []string
	submit := SubmitterFunc(func(_ context.Context, o engine.Order, id string) error {
		calls++
		seen = append(seen, id)
		if calls < 3 {
			return errors.New("payment declined")
		}
		return nil
	})
	h := newHarness(t, submit, 3)

	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	require.NoError(t, h.c.Complete("ORD-7"))
	h.clock.Advance(DefaultCompletionDelay)

	s := h.c.Snapshot()
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, 1, s.Attempts)
	assert.Equal(t, "payment declined", s.LastError)
	assert.True(t, s.ModalOpen)
	assert.ErrorIs(t, h.c.Complete("ORD-8"), ErrIllegalTransition)

	// backoff fires the second attempt
	h.clock.Advance(time.Second)
	assert.Equal(t, StatusCompleting, h.c.Snapshot().Status)
	h.clock.Advance(DefaultCompletionDelay)
	s = h.c.Snapshot()
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, 2, s.Attempts)

	// manual retry skips the backoff wait
	require.NoError(t, h.c.Retry())
	assert.Equal(t, 3, h.c.Snapshot().Attempts)
	h.clock.Advance(DefaultCompletionDelay)

	assert.Equal(t, StatusIdle, h.c.Snapshot().Status)
	assert.Equal(t, []string{"/dashboard"}, h.nav.Paths())
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"ORD-7", "ORD-7", "ORD-7"}, seen)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.submissions.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.submissions.WithLabelValues("success")))
}

func TestFailedStopsAtMaxAttempts(t *testing.T) {
	submit := SubmitterFunc(func(context.Context, engine.Order, string) error {
		return errors.New("unavailable")
	})
	h := newHarness(t, submit, 2)

	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	require.NoError(t, h.c.Complete("ORD-9"))
	h.clock.Advance(DefaultCompletionDelay + time.Second + DefaultCompletionDelay)

	s := h.c.Snapshot()
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, 2, s.Attempts)
	assert.Equal(t, 0, h.clock.Pending())

	h.clock.Advance(time.Hour)
	assert.Equal(t, StatusFailed, h.c.Snapshot().Status)

	require.NoError(t, h.c.Close())
	assert.Equal(t, StatusIdle, h.c.Snapshot().Status)
	assert.Empty(t, h.nav.Paths())

	// a failed session can also be replaced directly
	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	assert.Equal(t, 0, h.c.Snapshot().Attempts)
}

func TestMisuseErrors(t *testing.T) {
	h := newHarness(t, nil, 0)
	assert.ErrorIs(t, h.c.Complete("ORD-1"), ErrNoSession)
	assert.ErrorIs(t, h.c.Retry(), ErrNoSession)
	assert.ErrorIs(t, h.c.Close(), ErrNoSession)

	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	assert.ErrorIs(t, h.c.Complete("   "), ErrEmptyOrderID)
	assert.ErrorIs(t, h.c.Retry(), ErrIllegalTransition)
}

func TestReinitiateReplacesSession(t *testing.T) {
	h := newHarness(t, nil, 0)
	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductPlacement)))
	first := h.c.Snapshot()
	require.NoError(t, h.c.Initiate(sampleOrder(order.ProductNetWins)))
	second := h.c.Snapshot()

	assert.Greater(t, second.Token, first.Token)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, order.ProductNetWins, second.Order.Config.Product)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.open))
}

func TestSnapshotAndInitiateCopyOrder(t *testing.T) {
	h := newHarness(t, nil, 0)
	o := sampleOrder(order.ProductPlacement)
	require.NoError(t, h.c.Initiate(o))

	o.Config.Options.Flags["expressOrder"] = true
	s := h.c.Snapshot()
	assert.False(t, s.Order.Config.Options.Enabled("expressOrder"))

	s.Order.Config.Options.Flags["soloOnly"] = true
	assert.False(t, h.c.Snapshot().Order.Config.Options.Enabled("soloOnly"))
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusIdle:       {StatusOpen},
		StatusOpen:       {StatusOpen, StatusIdle, StatusCompleting},
		StatusCompleting: {StatusIdle, StatusFailed},
		StatusFailed:     {StatusOpen, StatusIdle, StatusCompleting},
	}
	all := []Status{StatusIdle, StatusOpen, StatusCompleting, StatusFailed}
	for from, tos := range allowed {
		for _, to := range all {
			assert.Equal(t, contains(tos, to), from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, Status("UNKNOWN").CanTransitionTo(StatusOpen))
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
