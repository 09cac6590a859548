package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// f5readerCollector implements prometheus.Collector, reading the active
// configuration tree on each scrape.
type f5readerCollector struct {
	srv *Server

	nodes          *prometheus.Desc
	pools          *prometheus.Desc
	virtualServers *prometheus.Desc
	rules          *prometheus.Desc
	sslProfiles    *prometheus.Desc
	monitors       *prometheus.Desc
	loadedAt       *prometheus.Desc
	loadsTotal     *prometheus.Desc
}

func newCollector(srv *Server) *f5readerCollector {
	return &f5readerCollector{
		srv: srv,

		nodes: prometheus.NewDesc(
			"f5reader_nodes",
			"Number of nodes in the active configuration.",
			nil, nil,
		),
		pools: prometheus.NewDesc(
			"f5reader_pools",
			"Number of pools in the active configuration.",
			nil, nil,
		),
		virtualServers: prometheus.NewDesc(
			"f5reader_virtual_servers",
			"Number of virtual servers in the active configuration.",
			nil, nil,
		),
		rules: prometheus.NewDesc(
			"f5reader_rules",
			"Number of iRules in the active configuration.",
			nil, nil,
		),
		sslProfiles: prometheus.NewDesc(
			"f5reader_ssl_profiles",
			"Number of client-ssl profiles in the active configuration.",
			nil, nil,
		),
		monitors: prometheus.NewDesc(
			"f5reader_monitors",
			"Number of health monitors in the active configuration.",
			nil, nil,
		),
		loadedAt: prometheus.NewDesc(
			"f5reader_config_loaded_timestamp_seconds",
			"Unix time of the last successful configuration load.",
			nil, nil,
		),
		loadsTotal: prometheus.NewDesc(
			"f5reader_config_loads_total",
			"Total successful configuration loads.",
			nil, nil,
		),
	}
}

func (c *f5readerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodes
	ch <- c.pools
	ch <- c.virtualServers
	ch <- c.rules
	ch <- c.sslProfiles
	ch <- c.monitors
	ch <- c.loadedAt
	ch <- c.loadsTotal
}

func (c *f5readerCollector) Collect(ch chan<- prometheus.Metric) {
	l := c.srv.store.LTM()
	if l == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue,
		float64(len(l.Nodes())))
	ch <- prometheus.MustNewConstMetric(c.pools, prometheus.GaugeValue,
		float64(len(l.Pools())))
	ch <- prometheus.MustNewConstMetric(c.virtualServers, prometheus.GaugeValue,
		float64(len(l.VirtualServers())))
	ch <- prometheus.MustNewConstMetric(c.rules, prometheus.GaugeValue,
		float64(len(l.Rules())))
	ch <- prometheus.MustNewConstMetric(c.sslProfiles, prometheus.GaugeValue,
		float64(len(l.SSLProfiles())))
	ch <- prometheus.MustNewConstMetric(c.monitors, prometheus.GaugeValue,
		float64(len(l.Monitors())))
	ch <- prometheus.MustNewConstMetric(c.loadedAt, prometheus.GaugeValue,
		float64(c.srv.store.LoadedAt().Unix()))
	ch <- prometheus.MustNewConstMetric(c.loadsTotal, prometheus.CounterValue,
		float64(c.srv.store.Generation()))
}
