// Package cache keeps the last fetched collection of each resource kind and
// coordinates writes against it.
//
// A collection never applies a write to its in-memory data. Every
// successful mutation marks the entry stale and schedules a refetch; reads
// reflect the write once that refetch has been applied.
package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// State is the freshness of a cache entry.
type State int

const (
	// Idle means nothing was fetched yet.
	Idle State = iota
	// Loading means a fetch is in flight.
	Loading
	// Fresh means the data matches the latest completed fetch.
	Fresh
	// Stale means the data must be refetched before it is trusted.
	Stale
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	}
	return "unknown"
}

// Gateway is the remote surface of one resource kind.
type Gateway[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id string, patch any) (T, error)
	Remove(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, id string, completed bool) (T, error)
}

// Validator checks a mutation before any network call.
type Validator func(Mutation) error

// Option configures a Collection.
type Option func(*options)

type options struct {
	validate Validator
	onChange func(State)
}

// WithValidator runs v before every mutation.
func WithValidator(v Validator) Option {
	return func(o *options) { o.validate = v }
}

// WithOnChange registers fn to be called after a fetch settles, with the
// resulting state. fn runs outside the collection lock.
func WithOnChange(fn func(State)) Option {
	return func(o *options) { o.onChange = fn }
}

// Collection is the cache entry and mutation coordinator of one resource
// kind.
type Collection[T any] struct {
	name string
	gw   Gateway[T]
	log  *zap.Logger
	opts options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	data      []T
	state     State
	requested uint64 // sequence of the latest issued fetch
	applied   uint64 // sequence of the fetch whose data is held
	err       error
	errSeq    uint64
	changed   chan struct{}
	closed    bool
}

// New creates an idle collection named name (e.g. "todo") over gw.
// Call Close to stop background fetches.
func New[T any](name string, gw Gateway[T], log *zap.Logger, opts ...Option) *Collection[T] {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Collection[T]{
		name:    name,
		gw:      gw,
		log:     log.With(zap.String("collection", name)),
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// State returns the current freshness state.
func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error of the last failed fetch, cleared by a successful
// one.
func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Read returns a copy of the last fetched data without blocking. It
// starts a background fetch when the entry is idle or stale.
func (c *Collection[T]) Read() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed && (c.state == Idle || c.state == Stale) {
		c.startFetchLocked()
	}
	return c.snapshotLocked()
}

// Await blocks until the entry is fresh, fetching if needed, and returns
// the data. It returns the fetch error if the latest fetch failed.
func (c *Collection[T]) Await(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state == Idle || c.state == Stale {
		c.startFetchLocked()
	}
	target := c.requested
	c.mu.Unlock()
	return c.wait(ctx, target)
}

// Refresh issues a new fetch and waits for it.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.startFetchLocked()
	target := c.requested
	c.mu.Unlock()
	return c.wait(ctx, target)
}

// Invalidate marks the entry stale and schedules a refetch.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.markStaleLocked()
}

// Mutate performs m through the gateway. On success the entry is marked
// stale and a refetch is scheduled. On failure the entry is left as is
// and a *MutationError is returned; validation failures are returned
// unchanged before any network call.
func (c *Collection[T]) Mutate(ctx context.Context, m Mutation) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := m.check(); err != nil {
		return err
	}
	if c.opts.validate != nil {
		if err := c.opts.validate(m); err != nil {
			return err
		}
	}

	if err := apply(ctx, c.gw, m); err != nil {
		c.log.Warn("mutation failed", zap.Stringer("op", m.Op), zap.String("id", m.ID), zap.Error(err))
		return newMutationError(m.Op, c.name, err)
	}
	c.log.Debug("mutation applied", zap.Stringer("op", m.Op), zap.String("id", m.ID))

	c.mu.Lock()
	if !c.closed {
		c.markStaleLocked()
	}
	c.mu.Unlock()
	return nil
}

// Close cancels in-flight fetches and waits for them to return. Their
// results are discarded.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.notifyLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Collection[T]) markStaleLocked() {
	c.state = Stale
	c.log.Debug("marked stale")
	c.startFetchLocked()
}

func (c *Collection[T]) startFetchLocked() {
	c.requested++
	seq := c.requested
	c.state = Loading
	c.wg.Add(1)
	go c.fetch(seq)
	c.notifyLocked()
}

func (c *Collection[T]) fetch(seq uint64) {
	defer c.wg.Done()

	items, err := c.gw.List(c.ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq != c.requested {
		c.mu.Unlock()
		c.log.Debug("discarding superseded fetch", zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		c.err = err
		c.errSeq = seq
		c.state = Stale
		c.log.Warn("fetch failed", zap.Error(err))
	} else {
		if items == nil {
			items = []T{}
		}
		c.data = items
		c.applied = seq
		c.err = nil
		c.state = Fresh
		c.log.Debug("fetched", zap.Int("count", len(items)))
	}
	state := c.state
	c.notifyLocked()
	c.mu.Unlock()

	if c.opts.onChange != nil {
		c.opts.onChange(state)
	}
}

// wait blocks until the fetch target (or a later one) has settled.
func (c *Collection[T]) wait(ctx context.Context, target uint64) ([]T, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrClosed
		}
		if c.state == Fresh && c.applied >= target {
			out := c.snapshotLocked()
			c.mu.Unlock()
			return out, nil
		}
		if c.state == Stale && c.errSeq == c.requested && c.errSeq >= target {
			err := c.err
			c.mu.Unlock()
			return nil, err
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Collection[T]) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Collection[T]) snapshotLocked() []T {
	out := make([]T, len(c.data))
	copy(out, c.data)
	return out
}
