package metrics

import (
	"tomoru/internal/stats"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tomoru"

// Snapshotter is the read side of the request counter
type Snapshotter interface {
	Snapshot() ([]stats.IPCount, error)
}

// Collector exposes the request counter to Prometheus. Values are read from
// a fresh snapshot on every scrape, so the counter stays the only source of
// truth.
type Collector struct {
	counter Snapshotter

	requests  *prometheus.Desc
	addresses *prometheus.Desc
	reports   prometheus.Counter
}

func NewCollector(counter Snapshotter) *Collector {
	return &Collector{
		counter: counter,
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "client", "requests_total"),
			"Requests served per client address.",
			[]string{"ip"}, nil,
		),
		addresses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "client", "addresses"),
			"Distinct client addresses seen since start.",
			nil, nil,
		),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Stats reports written since start.",
		}),
	}
}

// ReportDone counts a completed report cycle
func (c *Collector) ReportDone() {
	c.reports.Inc()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.addresses
	c.reports.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.reports.Collect(ch)

	entries, err := c.counter.Snapshot()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.requests, err)
		return
	}

	for _, e := range entries {
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(e.Count), e.IP)
	}
	ch <- prometheus.MustNewConstMetric(c.addresses, prometheus.GaugeValue, float64(len(entries)))
}
