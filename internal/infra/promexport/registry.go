package promexport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aalvaropc/pdu-exporter/internal/buildinfo"
)

// NewRegistry returns a registry carrying the Go runtime, process and build
// info collectors, ready for New.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		newBuildInfo(),
	)
	return reg
}

func newBuildInfo() prometheus.Collector {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdu_exporter_build_info",
		Help: "Build information of the running exporter.",
		ConstLabels: prometheus.Labels{
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
		},
	})
	g.Set(1)
	return g
}
