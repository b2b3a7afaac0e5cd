package index

import "github.com/prometheus/client_golang/prometheus"

const (
	kindUnique = "unique"
	kindRange  = "range"

	actionHealed    = "healed"
	actionReclaimed = "reclaimed"
	actionSkipped   = "skipped"

	reasonMissing   = "missing"
	reasonMismatch  = "mismatch"
	reasonMalformed = "malformed"
)

var IndexWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "colindex",
	Subsystem: "index",
	Name:      "writes_total",
	Help:      "Index entries written.",
}, []string{"index", "kind"})

var IndexRemoves = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "colindex",
	Subsystem: "index",
	Name:      "removes_total",
	Help:      "Index entries removed on record removal.",
}, []string{"index", "kind"})

var StaleEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "colindex",
	Name:      "stale_entries_total",
	Help:      "Index entries found pointing at missing records.",
}, []string{"index", "action"})

var CursorBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "colindex",
	Subsystem: "cursor",
	Name:      "batches_total",
	Help:      "Entry batches fetched by range cursors.",
}, []string{"index"})

var CursorRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "colindex",
	Subsystem: "cursor",
	Name:      "rejected_total",
	Help:      "Range entries dropped by cursors.",
}, []string{"index", "reason"})

// Collectors returns the package metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{IndexWrites, IndexRemoves, StaleEntries, CursorBatches, CursorRejected}
}
