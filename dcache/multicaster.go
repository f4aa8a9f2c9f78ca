package dcache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gordian-engine/dstream"
	"github.com/gordian-engine/dstream/dbuffer"
	"github.com/gordian-engine/dstream/internal/dtrace"
	"go.uber.org/atomic"
)

// Entry is a buffered upstream value and the time it was observed.
type Entry[T any] struct {
	Val T
	At  time.Time
}

// Multicaster is the replaying, expiring multicast cache.
// See the package documentation for the overall behavior.
//
// Every state transition (a consumer attaching or detaching,
// an upstream notification, a refresh signal, the context ending)
// runs as a task on a [dstream.Serial],
// so the fields below the serial are never accessed concurrently.
//
// A generation that failed counts as ended for expiry:
// once its newest value is older than the refresh duration,
// the next consumer to attach restarts the upstream.
// Until then, consumers attaching to the failed generation
// receive the fresh buffered values followed by the same error.
type Multicaster[T any] struct {
	log     *slog.Logger
	now     func() time.Time
	metrics Metrics
	tracer  dtrace.Tracer

	// Bounds the refresh subscription and every generation's upstream.
	ctx context.Context

	after time.Duration

	applied atomic.Bool

	serial dstream.Serial

	source dstream.Observable[T]
	buf    *dbuffer.Evicting[Entry[T]]

	// Consumers awaiting live values from the current generation,
	// in attach order.
	pending []*consumer[T]

	// Current generation, nil until the first one starts.
	gen   *generation
	nGens uint64

	// Whether any generation was ever started.
	started bool

	// Set when a generation starts, cleared on its first value
	// or when it terminates.
	starting bool

	// Whether the current generation completed.
	completed bool

	// When the current generation completed or failed.
	endedAt time.Time

	// Set when the current generation failed.
	genErr error

	// When the current generation last produced a value,
	// zero if it has not produced one yet.
	lastValueAt time.Time

	// Set once ctx ends.
	closeErr error
}

// consumer is one downstream subscription.
type consumer[T any] struct {
	ctx context.Context
	o   dstream.Observer[T]

	// Releases the detach hook on ctx.
	stop func() bool
}

func (c *consumer[T]) complete() {
	c.o.OnComplete()
	c.stop()
}

func (c *consumer[T]) fail(err error) {
	c.o.OnError(err)
	c.stop()
}

// generation is one upstream subscription lifecycle.
type generation struct {
	id     uint64
	reason string

	cancel context.CancelCauseFunc
	span   dtrace.Span

	ended bool
}

// end releases the upstream subscription and finishes the span.
// It is safe to call more than once.
func (g *generation) end(cause error) {
	if g.ended {
		return
	}
	g.ended = true

	g.cancel(cause)
	g.span.End()
}

// New returns a Multicaster with no upstream.
// Call [*Multicaster.Apply] to assign the upstream,
// or use [Cache] to obtain an operator.
//
// The refresh source, if any, is subscribed immediately,
// and stays subscribed until ctx ends.
// When ctx ends, the current generation is torn down
// and every current and future consumer receives the context's cause as an error.
func New[T any](ctx context.Context, log *slog.Logger, cfg Config) *Multicaster[T] {
	p := cfg.resolve(log)

	m := &Multicaster[T]{
		log:     log,
		now:     cfg.Now,
		metrics: cfg.Metrics,
		tracer:  dtrace.TracerFrom(cfg.TracerProvider),

		ctx: ctx,

		after: p.after,

		buf: dbuffer.NewEvicting[Entry[T]](p.bufferLen),
	}

	if m.now == nil {
		m.now = time.Now
	}
	if m.metrics == nil {
		m.metrics = NopMetrics{}
	}

	if p.refresh != nil {
		p.refresh.Subscribe(ctx, dstream.ObserverFuncs[struct{}]{
			Next: func(struct{}) {
				m.serial.Do(m.handleRefresh)
			},
			Error: func(err error) {
				m.serial.Do(func() { m.handleRefreshEnded(err) })
			},
			Complete: func() {
				m.serial.Do(func() { m.handleRefreshEnded(nil) })
			},
		})
	}

	context.AfterFunc(ctx, func() {
		m.serial.Do(m.handleClose)
	})

	return m
}

// Cache returns an operator that caches its source through a new [Multicaster].
//
// The returned operator must be applied to exactly one source,
// as the Multicaster's state belongs to that source.
func Cache[T any](ctx context.Context, log *slog.Logger, cfg Config) dstream.Operator[T] {
	m := New[T](ctx, log, cfg)
	return m.Apply
}

// Apply assigns the upstream and returns m as an Observable.
// Apply panics if called more than once.
func (m *Multicaster[T]) Apply(source dstream.Observable[T]) dstream.Observable[T] {
	if !m.applied.CompareAndSwap(false, true) {
		panic(fmt.Errorf("BUG: Multicaster.Apply called more than once"))
	}

	m.serial.Do(func() {
		m.source = source
	})

	return m
}

// Subscribe attaches o to the cache until ctx is cancelled.
//
// Depending on the cache state, o receives still-fresh buffered values,
// then live values from the current generation,
// then completion or error.
// Buffered values are always delivered before any live value.
//
// Cancelling ctx is always safe,
// regardless of whether the generation o joined is still active.
func (m *Multicaster[T]) Subscribe(ctx context.Context, o dstream.Observer[T]) {
	c := &consumer[T]{
		ctx: ctx,
		o:   dstream.Guard(ctx, o),
	}
	c.stop = context.AfterFunc(ctx, func() {
		m.serial.Do(func() { m.detach(c) })
	})

	m.serial.Do(func() { m.attach(c) })
}

func (m *Multicaster[T]) attach(c *consumer[T]) {
	if c.ctx.Err() != nil {
		// Detached before we got here.
		return
	}

	m.metrics.Attached()

	if m.closeErr != nil {
		c.fail(m.closeErr)
		return
	}
	if m.source == nil {
		c.fail(ErrNoSource)
		return
	}

	now := m.now()

	switch {
	case !m.started:
		m.pending = append(m.pending, c)
		m.startGeneration(ReasonInitial)

	case m.after > 0 && m.ended() && !m.starting && m.isStale(now):
		// The consumer joins the fresh generation
		// rather than being handed stale values.
		m.startGeneration(ReasonExpired)
		m.pending = append(m.pending, c)

	default:
		live := !m.completed && m.genErr == nil
		if live {
			m.pending = append(m.pending, c)
		}

		m.replay(c, now)

		switch {
		case m.completed:
			c.complete()
		case m.genErr != nil:
			c.fail(m.genErr)
		}
	}
}

func (m *Multicaster[T]) detach(c *consumer[T]) {
	if i := slices.Index(m.pending, c); i >= 0 {
		m.pending = slices.Delete(m.pending, i, i+1)
	}
}

// ended reports whether the current generation completed or failed.
func (m *Multicaster[T]) ended() bool {
	return m.completed || m.genErr != nil
}

// isStale reports whether the ended generation's data
// is older than the refresh duration.
// A generation that ended without producing a value
// is dated by when it ended.
func (m *Multicaster[T]) isStale(now time.Time) bool {
	ref := m.lastValueAt
	if ref.IsZero() {
		ref = m.endedAt
	}
	return ref.Add(m.after).Before(now)
}

func (m *Multicaster[T]) fresh(now time.Time) func(Entry[T]) bool {
	if m.after <= 0 {
		return func(Entry[T]) bool { return true }
	}
	return func(e Entry[T]) bool {
		return e.At.Add(m.after).After(now)
	}
}

func (m *Multicaster[T]) replay(c *consumer[T], now time.Time) {
	n := 0
	for e := range m.buf.Filter(m.fresh(now)) {
		c.o.OnNext(e.Val)
		n++
	}

	if n > 0 {
		m.metrics.Replayed(n)
	}
}

// startGeneration tears down the current generation, if any,
// and subscribes to the upstream again.
//
// Upstream notifications are queued on the serial,
// so a synchronous upstream does not deliver anything
// until the task calling startGeneration has finished.
func (m *Multicaster[T]) startGeneration(reason string) {
	if m.gen != nil {
		m.teardown(ErrSuperseded)
	}

	m.nGens++
	ctx, cancel := context.WithCancelCause(m.ctx)
	ctx, span := m.tracer.Start(
		ctx, "dcache.generation",
		dtrace.WithAttributes(
			dtrace.GenerationAttr(m.nGens),
			dtrace.ReasonAttr(reason),
			dtrace.BufferLenAttr(m.buf.Len()),
		),
	)

	g := &generation{
		id:     m.nGens,
		reason: reason,
		cancel: cancel,
		span:   span,
	}

	m.gen = g
	m.started = true
	m.starting = true
	m.completed = false
	m.endedAt = time.Time{}
	m.genErr = nil
	m.lastValueAt = time.Time{}

	m.metrics.GenerationStarted(reason)
	m.log.Debug("Starting generation", "gen", g.id, "reason", reason)

	m.source.Subscribe(ctx, dstream.ObserverFuncs[T]{
		Next: func(v T) {
			m.serial.Do(func() { m.handleValue(g, v) })
		},
		Error: func(err error) {
			m.serial.Do(func() { m.handleError(g, err) })
		},
		Complete: func() {
			m.serial.Do(func() { m.handleComplete(g) })
		},
	})
}

// teardown ends the current generation and forgets its pending consumers
// without notifying them.
func (m *Multicaster[T]) teardown(cause error) {
	g := m.gen
	g.end(cause)

	if n := len(m.pending); n > 0 {
		m.log.Debug(
			"Releasing pending consumers of torn down generation",
			"gen", g.id, "n", n, "cause", cause,
		)
		m.metrics.Dropped(n)
		for _, c := range m.pending {
			c.stop()
		}
	}
	m.pending = nil
}

func (m *Multicaster[T]) handleValue(g *generation, v T) {
	if g != m.gen || g.ended {
		return
	}

	at := m.now()
	m.buf.Push(Entry[T]{Val: v, At: at})
	m.lastValueAt = at
	m.starting = false
	m.metrics.ValueCached()

	for _, c := range m.pending {
		c.o.OnNext(v)
	}
}

func (m *Multicaster[T]) handleComplete(g *generation) {
	if g != m.gen || g.ended {
		return
	}

	m.finish(g)
	m.log.Debug(
		"Generation completed",
		"gen", g.id, "reason", g.reason, "buffered", m.buf.Len(),
	)
}

// finish marks the current generation complete
// and completes its pending consumers.
func (m *Multicaster[T]) finish(g *generation) {
	m.completed = true
	m.endedAt = m.now()
	m.starting = false

	g.span.SetAttributes(dtrace.ValueCountAttr(m.buf.Len()))
	g.end(nil)

	pending := m.pending
	m.pending = nil
	for _, c := range pending {
		c.complete()
	}
}

func (m *Multicaster[T]) handleError(g *generation, err error) {
	if g != m.gen || g.ended {
		return
	}

	m.genErr = err
	m.endedAt = m.now()
	m.starting = false
	m.metrics.UpstreamError()
	m.log.Debug("Generation failed", "gen", g.id, "err", err)

	dtrace.SpanError(g.span, err)
	g.span.SetAttributes(dtrace.ErrorAttr(err))
	g.end(err)

	pending := m.pending
	m.pending = nil
	for _, c := range pending {
		c.fail(err)
	}
}

func (m *Multicaster[T]) handleRefresh() {
	if m.closeErr != nil {
		return
	}
	if m.source == nil {
		m.log.Debug("Ignoring refresh signal before source was applied")
		return
	}

	m.startGeneration(ReasonRefresh)
}

// handleRefreshEnded releases the active generation's upstream
// once no further refresh can arrive,
// completing its pending consumers with what they have received.
func (m *Multicaster[T]) handleRefreshEnded(err error) {
	if m.closeErr != nil {
		return
	}

	m.log.Debug("Refresh source ended", "err", err)

	g := m.gen
	if g == nil || g.ended {
		return
	}

	g.end(ErrRefreshEnded)
	m.completed = true
	m.endedAt = m.now()
	m.starting = false

	pending := m.pending
	m.pending = nil
	for _, c := range pending {
		c.complete()
	}
}

func (m *Multicaster[T]) handleClose() {
	cause := context.Cause(m.ctx)
	m.closeErr = cause

	m.log.Debug("Cache closing", "cause", cause)

	pending := m.pending
	m.pending = nil
	for _, c := range pending {
		c.fail(cause)
	}

	if m.gen != nil {
		m.gen.end(cause)
	}
	m.buf.Clear()
}
