// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus export of per-port statistics. The collector reads
// Port.GetStats on scrape, so the counters honor software-emulated
// resets the same way callers do.

package control

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-nic/logging"
	"github.com/momentics/hioload-nic/nic"
)

// PortCollector exposes per-port packet/byte/error counters.
type PortCollector struct {
	ports []*nic.Port

	inPackets  *prometheus.Desc
	outPackets *prometheus.Desc
	inBytes    *prometheus.Desc
	outBytes   *prometheus.Desc
	inErrors   *prometheus.Desc
	outErrors  *prometheus.Desc
	inMissed   *prometheus.Desc
}

// NewPortCollector builds a collector over the given ports.
func NewPortCollector(ports []*nic.Port) *PortCollector {
	label := []string{"port"}
	return &PortCollector{
		ports:      ports,
		inPackets:  prometheus.NewDesc("nic_port_rx_packets_total", "Packets received since last reset.", label, nil),
		outPackets: prometheus.NewDesc("nic_port_tx_packets_total", "Packets transmitted since last reset.", label, nil),
		inBytes:    prometheus.NewDesc("nic_port_rx_bytes_total", "Bytes received since last reset.", label, nil),
		outBytes:   prometheus.NewDesc("nic_port_tx_bytes_total", "Bytes transmitted since last reset.", label, nil),
		inErrors:   prometheus.NewDesc("nic_port_rx_errors_total", "Receive errors since last reset.", label, nil),
		outErrors:  prometheus.NewDesc("nic_port_tx_errors_total", "Transmit errors since last reset.", label, nil),
		inMissed:   prometheus.NewDesc("nic_port_rx_missed_total", "Packets dropped for lack of buffers.", label, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PortCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inPackets
	ch <- c.outPackets
	ch <- c.inBytes
	ch <- c.outBytes
	ch <- c.inErrors
	ch <- c.outErrors
	ch <- c.inMissed
}

// Collect implements prometheus.Collector.
func (c *PortCollector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.ports {
		stats, err := p.GetStats()
		if err != nil {
			logging.Warnf("control: port %d stats scrape failed: %v", p.ID(), err)
			continue
		}
		id := strconv.Itoa(int(p.ID()))
		ch <- prometheus.MustNewConstMetric(c.inPackets, prometheus.CounterValue, float64(stats.InPackets), id)
		ch <- prometheus.MustNewConstMetric(c.outPackets, prometheus.CounterValue, float64(stats.OutPackets), id)
		ch <- prometheus.MustNewConstMetric(c.inBytes, prometheus.CounterValue, float64(stats.InBytes), id)
		ch <- prometheus.MustNewConstMetric(c.outBytes, prometheus.CounterValue, float64(stats.OutBytes), id)
		ch <- prometheus.MustNewConstMetric(c.inErrors, prometheus.CounterValue, float64(stats.InErrors), id)
		ch <- prometheus.MustNewConstMetric(c.outErrors, prometheus.CounterValue, float64(stats.OutErrors), id)
		ch <- prometheus.MustNewConstMetric(c.inMissed, prometheus.CounterValue, float64(stats.InMissed), id)
	}
}
