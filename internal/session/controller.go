// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-crawler/internal/awards"
	"github.com/pdiddy/research-crawler/internal/logging"
	"github.com/pdiddy/research-crawler/pkg/types"
)

// ErrEmptyTerm is returned by Submit when the term is blank after trimming.
var ErrEmptyTerm = errors.New("session: empty search term")

const (
	defaultLookupTimeout = 30 * time.Second
	changesBuffer        = 16
)

// Lookup is the award lookup collaborator. *awards.Client implements it.
type Lookup interface {
	LookupAwards(ctx context.Context, piName string) ([]types.AwardRecord, error)
}

// Controller runs query sessions against a Lookup. Submit never waits on
// the network: each accepted submit starts one lookup in its own goroutine
// and supersedes any lookup still in flight. Only the latest submit's
// result is ever applied. A Controller is safe for concurrent use and is
// reusable for its whole lifetime.
type Controller struct {
	lookup  Lookup
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	active  uuid.UUID // lookup that may still apply its result
	cancel  context.CancelFunc
	changes chan State

	inflight sync.WaitGroup
}

// NewController creates an idle controller. A zero cfg.LookupTimeout uses
// the default of 30s.
func NewController(lookup Lookup, cfg types.SessionConfig, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.LookupTimeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Controller{
		lookup:  lookup,
		timeout: timeout,
		logger:  logger,
		state:   NewState(),
		changes: make(chan State, changesBuffer),
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Changes streams every applied state in order. Delivery never blocks the
// controller: when the buffer is full the oldest pending state is dropped,
// so a slow reader always sees the latest state last.
func (c *Controller) Changes() <-chan State {
	return c.changes
}

// Submit trims raw and starts a lookup for it. A blank term is rejected
// with ErrEmptyTerm: the state becomes a validation error, records are
// cleared, any in-flight lookup is abandoned, and no lookup is made.
// Otherwise Submit returns the ID of the new query without waiting for it.
// ctx bounds the lookup in addition to the controller's lookup timeout.
func (c *Controller) Submit(ctx context.Context, raw string) (uuid.UUID, error) {
	term := strings.TrimSpace(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelInflight()

	if term == "" {
		c.apply(Rejected{Message: MessageEmptyTerm})
		c.logger.Info("search rejected", "reason", "empty term")
		return uuid.Nil, ErrEmptyTerm
	}

	id := uuid.New()
	c.apply(Submitted{ID: id, Term: term})

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	lookupCtx = context.WithValue(lookupCtx, logging.QueryIDKey, id.String())
	c.active = id
	c.cancel = cancel

	c.inflight.Add(1)
	go c.run(lookupCtx, cancel, id, term)

	c.logger.Info("search submitted", "query_id", id, "term", term)
	return id, nil
}

// Wait blocks until every started lookup has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close abandons the in-flight lookup, if any, and waits for it to settle.
// The state stays as it is.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancelInflight()
	c.mu.Unlock()
	c.Wait()
}

// run performs one lookup and applies its outcome if it is still current.
func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, id uuid.UUID, term string) {
	defer c.inflight.Done()
	defer cancel()

	start := time.Now()
	records, err := c.lookup.LookupAwards(ctx, term)

	var ev Event
	if err != nil {
		ev = Failed{ID: id, Message: awards.UserMessage(err)}
	} else {
		ev = Resolved{ID: id, Records: records}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != id {
		c.logger.Debug("stale lookup result discarded", "query_id", id, "term", term)
		return
	}
	c.active = uuid.Nil
	c.cancel = nil

	if !c.apply(ev) {
		c.logger.Debug("lookup result not applicable", "query_id", id, "status", c.state.Status)
		return
	}
	if err != nil {
		c.logger.Warn("search failed", "query_id", id, "term", term, "error", err, "elapsed", time.Since(start))
		return
	}
	c.logger.Info("search settled", "query_id", id, "term", term, "records", len(records), "elapsed", time.Since(start))
}

// apply runs Transition and publishes the new state. Callers hold c.mu.
func (c *Controller) apply(e Event) bool {
	next, ok := Transition(c.state, e)
	if !ok {
		return false
	}
	c.state = next
	c.publish(next.clone())
	return true
}

// publish queues s on the changes channel, dropping the oldest queued
// state when full. Callers hold c.mu, so queued states keep their order.
func (c *Controller) publish(s State) {
	for {
		select {
		case c.changes <- s:
			return
		default:
		}
		select {
		case <-c.changes:
		default:
		}
	}
}

// cancelInflight cancels the context of the current lookup so that its
// result is never applied. Callers hold c.mu.
func (c *Controller) cancelInflight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.active = uuid.Nil
}
