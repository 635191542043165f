package metric

import "github.com/prometheus/client_golang/prometheus"

// KeyCounter reports how many keys a store holds.
type KeyCounter interface {
	Len() int
}

// KeysCollector reports the store's key count at scrape time. The count
// includes expired keys not yet lazily removed.
type KeysCollector struct {
	store KeyCounter
	desc  *prometheus.Desc
}

// NewKeysCollector returns a collector for store.
func NewKeysCollector(store KeyCounter) *KeysCollector {
	return &KeysCollector{
		store: store,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Keys held in the store, including expired keys not yet removed",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *KeysCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *KeysCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.store.Len()))
}
