package pebblestore

import (
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a subset of Pebble's internal metrics.
type Collector struct {
	db *pebble.DB

	compactions   *prometheus.Desc
	compactDebt   *prometheus.Desc
	memtableSize  *prometheus.Desc
	memtableCount *prometheus.Desc
	walSize       *prometheus.Desc
	walBytesIn    *prometheus.Desc
}

// Collector returns a prometheus.Collector over the store's database.
func (s *Store) Collector() *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("colindex_pebble_"+name, help, nil, nil)
	}
	return &Collector{
		db:            s.db,
		compactions:   desc("compactions_total", "Total number of compactions performed"),
		compactDebt:   desc("compaction_debt_bytes", "Estimated bytes to compact to reach a stable state"),
		memtableSize:  desc("memtable_size_bytes", "Bytes allocated by memtables"),
		memtableCount: desc("memtable_count", "Number of memtables"),
		walSize:       desc("wal_size_bytes", "Size of live WAL data"),
		walBytesIn:    desc("wal_bytes_in_total", "Logical bytes written to the WAL"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.compactions
	ch <- c.compactDebt
	ch <- c.memtableSize
	ch <- c.memtableCount
	ch <- c.walSize
	ch <- c.walBytesIn
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.db.Metrics()
	ch <- prometheus.MustNewConstMetric(c.compactions, prometheus.CounterValue, float64(m.Compact.Count))
	ch <- prometheus.MustNewConstMetric(c.compactDebt, prometheus.GaugeValue, float64(m.Compact.EstimatedDebt))
	ch <- prometheus.MustNewConstMetric(c.memtableSize, prometheus.GaugeValue, float64(m.MemTable.Size))
	ch <- prometheus.MustNewConstMetric(c.memtableCount, prometheus.GaugeValue, float64(m.MemTable.Count))
	ch <- prometheus.MustNewConstMetric(c.walSize, prometheus.GaugeValue, float64(m.WAL.Size))
	ch <- prometheus.MustNewConstMetric(c.walBytesIn, prometheus.CounterValue, float64(m.WAL.BytesIn))
}
