package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/runtime"
)

func testManager(tt *testing.T) *runtime.Manager {
	nandCfg := config.NandConfig{NumChannels: 1, NumPlanes: 1, NumBlocks: 2, NumPages: 8}
	dramCfg := config.DramConfig{TotalPages: 4}
	sramCfg := config.SramConfig{TotalPages: 4}

	m, err := runtime.New(nandCfg, dramCfg, sramCfg)
	if err != nil {
		tt.Fatalf("new manager: %s", err)
	}

	return m
}

// collectValues runs a full scrape and returns every emitted metric whose
// Desc is desc, decoded to a float64 gauge value. devicePageCount is the
// only Desc with more than one sample per scrape (one per device label).
func collectValues(c *Collector, desc *prometheus.Desc) []float64 {
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)

	var values []float64

	for m := range ch {
		if m.Desc() != desc {
			continue
		}

		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			panic(err)
		}

		values = append(values, pb.GetGauge().GetValue())
	}

	return values
}

func collectValue(c *Collector, desc *prometheus.Desc) float64 {
	vs := collectValues(c, desc)
	if len(vs) != 1 {
		panic("expected exactly one sample")
	}

	return vs[0]
}

func TestCollectorReportsLiveOccupancy(tt *testing.T) {
	m := testManager(tt)
	c := NewCollector(m)

	if n := testutil.CollectAndCount(c); n == 0 {
		tt.Fatal("collector emitted no metrics")
	}

	id, err := m.Files().CreateNewFile(2)
	if err != nil {
		tt.Fatalf("create file: %s", err)
	}

	if err := m.NandMmap(id, 0x1000); err != nil {
		tt.Fatalf("nand_mmap: %s", err)
	}

	if got := collectValue(c, c.nandFiles); got != 1 {
		tt.Errorf("nand_files: got %v, want 1", got)
	}

	if got := collectValue(c, c.registryEntries); got != 1 {
		tt.Errorf("resource_registry_entries: got %v, want 1", got)
	}

	if err := m.SramMalloc(1, 0x4000); err != nil {
		tt.Fatalf("sram_malloc: %s", err)
	}

	if got, want := collectValue(c, c.sramFreePages), float64(m.Sram().FreeCount()); got != want {
		tt.Errorf("sram_free_pages: got %v, want %v", got, want)
	}

	if got, want := collectValue(c, c.sramTotalPages), float64(4); got != want {
		tt.Errorf("sram_total_pages: got %v, want %v", got, want)
	}
}

// TestCollectorDescribe checks the total sample count across a scrape: six
// single-value gauges plus one three-way label split (NAND/DRAM/SRAM) on
// devicePageCount.
func TestCollectorDescribe(tt *testing.T) {
	m := testManager(tt)
	c := NewCollector(m)

	if n := testutil.CollectAndCount(c); n != 9 {
		tt.Errorf("metric count: got %d, want 9", n)
	}
}

func TestCollectorDevicePageCountPerDevice(tt *testing.T) {
	m := testManager(tt)

	id, err := m.Files().CreateNewFile(3)
	if err != nil {
		tt.Fatalf("create file: %s", err)
	}

	if err := m.NandMmap(id, 0x1000); err != nil {
		tt.Fatalf("nand_mmap: %s", err)
	}

	c := NewCollector(m)

	values := collectValues(c, c.devicePageCount)
	if len(values) != 3 {
		tt.Fatalf("device_page_count samples: got %d, want 3 (NAND/DRAM/SRAM)", len(values))
	}

	var total float64
	for _, v := range values {
		total += v
	}

	if total != 3 {
		tt.Errorf("total mapped pages across devices: got %v, want 3", total)
	}
}
