package application

import (
	"sync"
	"time"

	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/minmo-hq/offrampd/pkg/minmo"
	log "github.com/sirupsen/logrus"
)

// DefaultPollInterval is the cadence at which a tracked swap is
// re-fetched from the swap service.
const DefaultPollInterval = 5 * time.Second

// SwapFetcher is the slice of the swap service the tracker needs.
type SwapFetcher interface {
	GetSwap(swapId string) (*minmo.Swap, error)
}

// TrackerUpdate is one observed snapshot together with its derived
// progress position.
type TrackerUpdate struct {
	Swap   minmo.Swap
	Step   domain.Step
	Branch domain.Branch
}

// Tracker polls the lifecycle of a single swap at a fixed interval and
// publishes derived progress updates. Polling halts exactly when a
// terminal state (completed, cancelled, disputed) is observed or when
// Stop is called, whichever comes first. Fetch failures keep the last
// snapshot and are retried on the next tick.
type Tracker struct {
	fetcher  SwapFetcher
	interval time.Duration

	mu      sync.Mutex
	current minmo.Swap
	done    bool

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	updates  chan TrackerUpdate
}

func NewTracker(fetcher SwapFetcher, swap minmo.Swap, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		fetcher:  fetcher,
		interval: interval,
		current:  swap,
		done:     domain.State(swap.State).IsTerminal(),
		stopCh:   make(chan struct{}),
		updates:  make(chan TrackerUpdate, 1),
	}
}

// Start launches the polling loop. Starting a tracker whose swap is
// already terminal closes the updates channel immediately.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.loop()
}

// Stop cancels the tracker. No update is published and no state is
// mutated after Stop returns, including from a fetch still in flight.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.done = true
		t.mu.Unlock()
		close(t.stopCh)
	})
}

// Updates streams progress snapshots. The channel is closed once the
// swap reaches a terminal state or the tracker is stopped. Only the
// latest update is retained if the consumer falls behind.
func (t *Tracker) Updates() <-chan TrackerUpdate {
	return t.updates
}

// Current returns the last applied snapshot and its progress position.
func (t *Tracker) Current() TrackerUpdate {
	t.mu.Lock()
	swap := t.current
	t.mu.Unlock()

	step, branch := domain.Advance(domain.State(swap.State))
	return TrackerUpdate{Swap: swap, Step: step, Branch: branch}
}

func (t *Tracker) loop() {
	defer close(t.updates)

	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			// The fetch runs synchronously on this loop, so a tick
			// firing while one is outstanding is simply dropped by
			// the ticker: at most one fetch is ever in flight.
			if terminal := t.pollOnce(); terminal {
				return
			}
		}
	}
}

// pollOnce performs one fetch-then-apply cycle and reports whether the
// observed state is terminal.
func (t *Tracker) pollOnce() bool {
	t.mu.Lock()
	swapId := t.current.Id
	t.mu.Unlock()

	swap, err := t.fetcher.GetSwap(swapId)
	if err != nil {
		// stale read on error: displayed state is unchanged and the
		// loop keeps running
		log.WithError(err).WithField("swap", swapId).Warn("failed to poll swap state")
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return true
	}
	t.current = *swap
	terminal := domain.State(swap.State).IsTerminal()
	if terminal {
		t.done = true
	}

	// publish under the lock: Stop contends on the same mutex, so no
	// update can land in the buffer once Stop has returned
	t.publish(*swap)
	return terminal
}

func (t *Tracker) publish(swap minmo.Swap) {
	step, branch := domain.Advance(domain.State(swap.State))
	update := TrackerUpdate{Swap: swap, Step: step, Branch: branch}

	for {
		select {
		case t.updates <- update:
			return
		default:
			// drop the stale buffered update in favor of the new one
			select {
			case <-t.updates:
			default:
			}
		}
	}
}
