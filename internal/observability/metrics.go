package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iacctl",
			Subsystem: "frames",
			Name:      "encoded_total",
			Help:      "Frames produced by serialization.",
		},
		[]string{"version", "payload"},
	)
	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iacctl",
			Subsystem: "frames",
			Name:      "decoded_total",
			Help:      "Frames accepted by deserialization.",
		},
		[]string{"outcome"},
	)
	incompleteTransmissions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "iacctl",
			Subsystem: "frames",
			Name:      "incomplete_transmissions_total",
			Help:      "Chunked batches decoded while pages were still missing.",
		},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iacctl",
			Subsystem: "serializer",
			Name:      "failures_total",
			Help:      "Serializer failures by operation and error kind.",
		},
		[]string{"op", "kind"},
	)
	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "iacctl",
			Subsystem: "serializer",
			Name:      "operation_duration_seconds",
			Help:      "Serialize and deserialize duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"op", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesEncoded, framesDecoded, incompleteTransmissions, failures, opDuration)
	})
}

func RecordEncode(version int, payload string, frames int, duration time.Duration) {
	RegisterMetrics()
	framesEncoded.WithLabelValues(strconv.Itoa(version), payload).Add(float64(frames))
	opDuration.WithLabelValues("serialize", "true").Observe(duration.Seconds())
}

// RecordDecode counts frames of one deserialize call. err == nil records a
// completed transmission.
func RecordDecode(frames int, duration time.Duration, err error) {
	RegisterMetrics()
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, protocol.ErrIncompleteTransmission):
		outcome = "incomplete"
		incompleteTransmissions.Inc()
	default:
		outcome = "failed"
	}
	framesDecoded.WithLabelValues(outcome).Add(float64(frames))
	opDuration.WithLabelValues("deserialize", strconv.FormatBool(err == nil)).Observe(duration.Seconds())
}

func RecordFailure(op string, err error, duration time.Duration) {
	RegisterMetrics()
	failures.WithLabelValues(op, ErrorKind(err)).Inc()
	if op == "serialize" {
		opDuration.WithLabelValues(op, "false").Observe(duration.Seconds())
	}
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{protocol.ErrIncompleteTransmission, "incomplete_transmission"},
	{protocol.ErrSchemaNotFound, "schema_not_found"},
	{protocol.ErrFieldTypeMismatch, "field_type_mismatch"},
	{protocol.ErrMissingField, "missing_field"},
	{protocol.ErrMixedFrameTypes, "mixed_frame_types"},
	{protocol.ErrMixedVersions, "mixed_versions"},
	{protocol.ErrMultipleFullFrames, "multiple_full_frames"},
	{protocol.ErrInconsistentTotalPages, "inconsistent_total_pages"},
	{protocol.ErrUnsupportedVersion, "unsupported_version"},
	{protocol.ErrNoFrames, "no_frames"},
	{protocol.ErrValidation, "validation"},
	{protocol.ErrMalformedFrame, "malformed_frame"},
	{protocol.ErrInvalidSchema, "invalid_schema"},
}

// ErrorKind maps err onto a bounded metric label.
func ErrorKind(err error) string {
	if err == nil {
		return "none"
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
