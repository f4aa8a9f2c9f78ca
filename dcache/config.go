package dcache

import (
	"log/slog"
	"time"

	"github.com/gordian-engine/dstream/internal/dtrace"
)

// Config is the configuration for a [Multicaster].
type Config struct {
	// When the upstream is subscribed again.
	// If nil, or a [Refresh] with neither Source nor After set,
	// buffered values never expire.
	Policy Policy

	// Number of values retained for replay,
	// unless the Policy is a [Refresh] with its own BufferLen.
	// If zero, one value is retained.
	BufferLen int

	// Clock used to timestamp values and check staleness.
	// If nil, [time.Now] is used.
	Now func() time.Time

	// If nil, [NopMetrics] is used.
	Metrics Metrics

	// If nil, a no-op tracer provider is used.
	TracerProvider dtrace.TracerProvider
}

// resolve applies defaults and reduces the Policy.
// It logs, rather than rejects, a configuration that never expires.
func (c Config) resolve(log *slog.Logger) resolvedPolicy {
	var p resolvedPolicy
	if c.Policy != nil {
		p = c.Policy.resolve()
	}

	if !p.expires() {
		log.Warn(
			"Cache policy sets neither a refresh source nor a positive refresh duration; buffered values will never expire",
		)
	}

	switch {
	case p.bufferLen > 0:
		// Policy wins.
	case c.BufferLen > 0:
		p.bufferLen = c.BufferLen
	default:
		p.bufferLen = 1
	}

	return p
}
