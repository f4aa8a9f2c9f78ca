package dcache

// Metrics receives counts of what a [Multicaster] is doing.
// Implementations must be safe for concurrent use
// when shared between multicasters.
//
// See the dcachemetrics package for a Prometheus implementation.
type Metrics interface {
	// Attached is called for each consumer that subscribes.
	Attached()

	// Replayed is called with the number of buffered values
	// replayed to a single consumer, when non-zero.
	Replayed(n int)

	// GenerationStarted is called each time the upstream is subscribed,
	// with one of the Reason constants.
	GenerationStarted(reason string)

	// ValueCached is called for each upstream value.
	ValueCached()

	// UpstreamError is called when a generation fails.
	UpstreamError()

	// Dropped is called with the number of pending consumers
	// released without notification when their generation was torn down.
	Dropped(n int)
}

// Reasons reported to [Metrics.GenerationStarted] and in logs.
const (
	ReasonInitial = "initial"
	ReasonExpired = "expired"
	ReasonRefresh = "refresh"
)

// NopMetrics is a Metrics that discards everything.
type NopMetrics struct{}

func (NopMetrics) Attached()                {}
func (NopMetrics) Replayed(int)             {}
func (NopMetrics) GenerationStarted(string) {}
func (NopMetrics) ValueCached()             {}
func (NopMetrics) UpstreamError()           {}
func (NopMetrics) Dropped(int)              {}
