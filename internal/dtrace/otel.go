package dtrace

import (
	otelattr "go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	otpnoop "go.opentelemetry.io/otel/trace/noop"
)

type TracerProvider = oteltrace.TracerProvider

type Tracer = oteltrace.Tracer

type Span = oteltrace.Span

type KeyValueAttr = otelattr.KeyValue

// TracerName is the instrumentation name used for tracers
// obtained from a caller-supplied provider.
const TracerName = "github.com/gordian-engine/dstream"

// NopTracerProvider returns the otel no-op tracer provider.
// This is intended to use as a fallback when a nil tracer provider is given.
func NopTracerProvider() TracerProvider {
	return otpnoop.NewTracerProvider()
}

// TracerFrom returns the dstream tracer from tp,
// falling back to a no-op tracer if tp is nil.
func TracerFrom(tp TracerProvider) Tracer {
	if tp == nil {
		tp = NopTracerProvider()
	}
	return tp.Tracer(TracerName)
}

// WithAttributes is an alias to [oteltrace.WithAttributes]
// to allow consumers to only reference the dtrace package.
func WithAttributes(attrs ...KeyValueAttr) oteltrace.SpanStartEventOption {
	return oteltrace.WithAttributes(attrs...)
}

// SpanError sets the given span to error status,
// with detail from err.Error().
func SpanError(span oteltrace.Span, err error) {
	span.SetStatus(otelcodes.Error, err.Error())
}

// ErrorAttr returns an attribute with the key "err"
// and the lazily evaluated value of err's Error() method.
func ErrorAttr(err error) KeyValueAttr {
	return otelattr.Stringer("err", errStringer{err: err})
}

type errStringer struct {
	err error
}

func (e errStringer) String() string {
	return e.err.Error()
}

func GenerationAttr(id uint64) KeyValueAttr {
	return otelattr.Int64("dcache.generation", int64(id))
}

func ReasonAttr(reason string) KeyValueAttr {
	return otelattr.String("dcache.reason", reason)
}

func BufferLenAttr(n int) KeyValueAttr {
	return otelattr.Int("dcache.buffer.len", n)
}

func ValueCountAttr(n int) KeyValueAttr {
	return otelattr.Int("dcache.values", n)
}
