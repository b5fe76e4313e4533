// Package promexport publishes PDU snapshots as Prometheus metrics.
package promexport

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

// Exporter holds the series of the last applied snapshots and the exporter's
// own scrape metrics. It is a prometheus.Collector for the snapshot series.
type Exporter struct {
	mu        sync.Mutex
	dropStale bool
	series    map[string]series

	deviceDescs  map[string]*prometheus.Desc
	outletAmps   *prometheus.Desc
	outletKWh    *prometheus.Desc
	outletWatts  *prometheus.Desc
	outletStatus *prometheus.Desc

	up           prometheus.Gauge
	scrapes      prometheus.Counter
	scrapeErrors *prometheus.CounterVec
	lastDuration prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

// series is one gauge sample, emitted as a const metric on collection.
type series struct {
	desc   *prometheus.Desc
	labels []string
	value  float64
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithDropStale replaces all device and outlet series on each snapshot so
// outlets that disappear from the document stop being exported.
func WithDropStale(enabled bool) Option {
	return func(e *Exporter) { e.dropStale = enabled }
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, opts ...Option) (*Exporter, error) {
	e := &Exporter{
		series:       make(map[string]series),
		deviceDescs:  make(map[string]*prometheus.Desc, len(deviceMetrics)),
		outletAmps:   prometheus.NewDesc("pdu_outlet_amps", "Outlet Amperage", outletLabels, nil),
		outletKWh:    prometheus.NewDesc("pdu_outlet_kwh_total", "Outlet Total KWh", outletLabels, nil),
		outletWatts:  prometheus.NewDesc("pdu_outlet_watts", "Outlet Watts", outletLabels, nil),
		outletStatus: prometheus.NewDesc(outletStatusName, "Outlet status", append(append([]string{}, outletLabels...), outletStatusName), nil),

		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pdu_up",
			Help: "Whether the last fetch of the PDU data document succeeded.",
		}),
		scrapes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdu_exporter_scrapes_total",
			Help: "Total number of PDU polling passes.",
		}),
		scrapeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdu_exporter_scrape_errors_total",
			Help: "Total number of PDU polling errors by stage.",
		}, []string{"stage"}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pdu_exporter_last_scrape_duration_seconds",
			Help: "Duration of the last PDU polling pass.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pdu_exporter_last_success_timestamp_seconds",
			Help: "Unix time of the last successful PDU polling pass.",
		}),
	}
	for _, m := range deviceMetrics {
		e.deviceDescs[m.key] = prometheus.NewDesc(m.name, m.help, deviceLabels, nil)
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, stage := range domain.ScrapeStages {
		e.scrapeErrors.WithLabelValues(string(stage))
	}

	for _, c := range []prometheus.Collector{
		e, e.up, e.scrapes, e.scrapeErrors, e.lastDuration, e.lastSuccess,
	} {
		if err := reg.Register(c); err != nil {
			return nil, &domain.OpError{
				Op:   "promexport.register",
				Kind: domain.KindExecution,
				Err:  err,
			}
		}
	}
	return e, nil
}

var (
	_ ports.MetricsSink    = (*Exporter)(nil)
	_ prometheus.Collector = (*Exporter)(nil)
)

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range deviceMetrics {
		ch <- e.deviceDescs[m.key]
	}
	ch <- e.outletAmps
	ch <- e.outletKWh
	ch <- e.outletWatts
	ch <- e.outletStatus
}

// Collect implements prometheus.Collector. It holds the same lock as Apply,
// so a gather never observes a half-applied snapshot.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.series {
		ch <- prometheus.MustNewConstMetric(s.desc, prometheus.GaugeValue, s.value, s.labels...)
	}
}

// Apply publishes one snapshot. Devices without outlets are skipped, fields
// with unknown keys are ignored, and unparseable values are reported back.
func (e *Exporter) Apply(s domain.Snapshot) []error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.series
	if e.dropStale {
		e.series = make(map[string]series, len(prev))
	}

	var problems []error
	for _, d := range s.Devices {
		if !d.Exported() {
			continue
		}

		for _, f := range d.Fields {
			desc, ok := e.deviceDescs[f.Key]
			if !ok {
				continue
			}
			v, err := f.Float()
			if err != nil {
				problems = append(problems, fmt.Errorf("device %s: %w", d.ID, err))
				continue
			}
			e.set(f.Key, desc, v, d.ID, d.Type)
		}

		for _, o := range d.Outlets {
			ol := []string{o.Name, o.Num, o.URL, d.ID, d.Type}
			e.set("amps", e.outletAmps, o.Amps, ol...)
			e.set("kwh", e.outletKWh, o.KWattHrs, ol...)
			e.set("watts", e.outletWatts, o.Watts, ol...)

			status, err := domain.ParseOutletStatus(string(o.Status))
			if err != nil {
				problems = append(problems, fmt.Errorf("device %s outlet %s: %w", d.ID, o.Num, err))
				e.keepStatus(prev, ol)
				continue
			}
			e.setStatus(ol, status)
		}
	}

	if n := len(problems); n > 0 {
		e.scrapeErrors.WithLabelValues(string(domain.StageProcess)).Add(float64(n))
	}
	return problems
}

func seriesKey(name string, labels []string) string {
	return name + "\xff" + strings.Join(labels, "\xff")
}

func (e *Exporter) set(name string, desc *prometheus.Desc, v float64, labels ...string) {
	e.series[seriesKey(name, labels)] = series{desc: desc, labels: labels, value: v}
}

// setStatus mirrors an enum: the current state is 1, every other state 0.
func (e *Exporter) setStatus(labels []string, current domain.OutletStatus) {
	for _, st := range domain.OutletStatuses {
		l := append(append(make([]string, 0, len(labels)+1), labels...), string(st))

		v := 0.0
		if st == current {
			v = 1
		}
		e.set(outletStatusName, e.outletStatus, v, l...)
	}
}

// keepStatus carries the previous enum of an outlet over a reset.
func (e *Exporter) keepStatus(prev map[string]series, labels []string) {
	for _, st := range domain.OutletStatuses {
		k := seriesKey(outletStatusName, append(append(make([]string, 0, len(labels)+1), labels...), string(st)))
		if s, ok := prev[k]; ok {
			e.series[k] = s
		}
	}
}

// ObserveScrape records the outcome of one polling pass. An empty stage
// means success.
func (e *Exporter) ObserveScrape(stage domain.ScrapeStage, duration time.Duration, at time.Time) {
	e.scrapes.Inc()
	e.lastDuration.Set(duration.Seconds())

	if stage == domain.StageNone {
		e.up.Set(1)
		e.lastSuccess.Set(float64(at.UnixNano()) / 1e9)
		return
	}
	e.up.Set(0)
	e.scrapeErrors.WithLabelValues(string(stage)).Inc()
}
