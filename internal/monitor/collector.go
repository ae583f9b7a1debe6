package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hostwatch/internal/models"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// CPUWindow is how long a CPU sample observes the processor.
const CPUWindow = time.Second

// Sampler reads live utilization percentages. Every call samples the system
// again; nothing is cached.
type Sampler interface {
	CPUPercent(ctx context.Context) (float64, error)
	MemoryPercent(ctx context.Context) (float64, error)
	DiskPercent(ctx context.Context, mountPoint string) (float64, error)
}

// Collector is the Sampler backed by gopsutil.
type Collector struct {
	cpuWindow time.Duration
	stats     CollectorStats

	// Overridable for tests.
	cpuPercent    func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	diskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	hostInfo      func(ctx context.Context) (*host.InfoStat, error)
}

// CollectorStats counts samples taken by a Collector.
type CollectorStats struct {
	TotalSamples  uint64
	FailedSamples uint64
}

func NewCollector() *Collector {
	return &Collector{
		cpuWindow:     CPUWindow,
		cpuPercent:    cpu.PercentWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		diskUsage:     disk.UsageWithContext,
		hostInfo:      host.InfoWithContext,
	}
}

// CPUPercent returns system-wide CPU utilization over the sampling window.
func (c *Collector) CPUPercent(ctx context.Context) (float64, error) {
	pcts, err := c.cpuPercent(ctx, c.cpuWindow, false)
	if err == nil && len(pcts) == 0 {
		err = errors.New("no cpu samples returned")
	}
	if err != nil {
		return c.fail(models.MetricCPU, err)
	}
	return c.ok(pcts[0])
}

// MemoryPercent returns the share of physical memory in use.
func (c *Collector) MemoryPercent(ctx context.Context) (float64, error) {
	vm, err := c.virtualMemory(ctx)
	if err != nil {
		return c.fail(models.MetricRAM, err)
	}
	return c.ok(vm.UsedPercent)
}

// DiskPercent returns the share of the filesystem at mountPoint in use.
func (c *Collector) DiskPercent(ctx context.Context, mountPoint string) (float64, error) {
	usage, err := c.diskUsage(ctx, mountPoint)
	if err != nil {
		return c.fail(models.MetricDisk, fmt.Errorf("%s: %w", mountPoint, err))
	}
	return c.ok(usage.UsedPercent)
}

// Hostname identifies the monitored host in alerts.
func (c *Collector) Hostname(ctx context.Context) string {
	if info, err := c.hostInfo(ctx); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown-host"
}

// Stats returns the sample counters.
func (c *Collector) Stats() CollectorStats {
	return c.stats
}

func (c *Collector) ok(v float64) (float64, error) {
	c.stats.TotalSamples++
	return clampPercent(v), nil
}

func (c *Collector) fail(m models.Metric, err error) (float64, error) {
	c.stats.TotalSamples++
	c.stats.FailedSamples++
	return 0, fmt.Errorf("failed to read %s usage: %w", m.Label(), err)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Sample reads metric through s.
func Sample(ctx context.Context, s Sampler, m models.Metric, mountPoint string) (float64, error) {
	switch m {
	case models.MetricCPU:
		return s.CPUPercent(ctx)
	case models.MetricRAM:
		return s.MemoryPercent(ctx)
	case models.MetricDisk:
		return s.DiskPercent(ctx, mountPoint)
	default:
		return 0, fmt.Errorf("unknown metric %q", m)
	}
}
