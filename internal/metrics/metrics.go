// Package metrics exposes the runtime manager's table occupancy as
// Prometheus metrics, in the Collector/Desc shape of
// talyz/systemd_exporter's systemd.Collector: a struct of *prometheus.Desc
// built once in the constructor, and a Collect method that computes
// current values on every scrape rather than caching them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xyfuture/nandmachine/internal/page"
	"github.com/xyfuture/nandmachine/internal/runtime"
)

const namespace = "nandmachine"

// Collector reports live occupancy of every table the runtime manager
// owns: NAND files, DRAM/SRAM free pages, page table entries, and
// resource registry entries.
type Collector struct {
	manager *runtime.Manager

	nandFiles       *prometheus.Desc
	dramFreePages   *prometheus.Desc
	dramTotalPages  *prometheus.Desc
	sramFreePages   *prometheus.Desc
	sramTotalPages  *prometheus.Desc
	registryEntries *prometheus.Desc
	devicePageCount *prometheus.Desc
}

// NewCollector creates a Collector reporting manager's table occupancy.
func NewCollector(manager *runtime.Manager) *Collector {
	return &Collector{
		manager: manager,
		nandFiles: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "nand_files"),
			"Number of files registered in the NAND file table.", nil, nil,
		),
		dramFreePages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "dram_free_pages"),
			"Number of currently unallocated DRAM pages.", nil, nil,
		),
		dramTotalPages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "dram_total_pages"),
			"Total configured DRAM pages.", nil, nil,
		),
		sramFreePages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sram_free_pages"),
			"Number of currently unallocated SRAM pages.", nil, nil,
		),
		sramTotalPages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sram_total_pages"),
			"Total configured SRAM pages.", nil, nil,
		),
		registryEntries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "resource_registry_entries"),
			"Number of entries currently held in the resource registry.", nil, nil,
		),
		devicePageCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "page_table_entries"),
			"Number of valid page table entries per backing device.", []string{"device"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nandFiles
	ch <- c.dramFreePages
	ch <- c.dramTotalPages
	ch <- c.sramFreePages
	ch <- c.sramTotalPages
	ch <- c.registryEntries
	ch <- c.devicePageCount
}

// Collect implements prometheus.Collector, computing every value fresh
// from the manager's tables on each call.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.nandFiles, prometheus.GaugeValue, float64(c.manager.Files().Count()))

	ch <- prometheus.MustNewConstMetric(c.dramFreePages, prometheus.GaugeValue, float64(c.manager.Dram().FreeCount()))
	ch <- prometheus.MustNewConstMetric(c.dramTotalPages, prometheus.GaugeValue, float64(c.manager.Dram().Total()))

	ch <- prometheus.MustNewConstMetric(c.sramFreePages, prometheus.GaugeValue, float64(c.manager.Sram().FreeCount()))
	ch <- prometheus.MustNewConstMetric(c.sramTotalPages, prometheus.GaugeValue, float64(c.manager.Sram().Total()))

	ch <- prometheus.MustNewConstMetric(c.registryEntries, prometheus.GaugeValue, float64(c.manager.Registry().Count()))

	for _, device := range []page.Device{page.NAND, page.DRAM, page.SRAM} {
		count := len(c.manager.Pages().GetDevicePages(device))
		ch <- prometheus.MustNewConstMetric(c.devicePageCount, prometheus.GaugeValue, float64(count), device.String())
	}
}
