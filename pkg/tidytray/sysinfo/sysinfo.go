// Package sysinfo answers point-in-time system queries: mounted disks,
// temperature sensors and memory totals.
package sysinfo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

var logger = logging.Get("sysinfo")

// Disk is one mounted volume.
type Disk struct {
	MountPoint string `json:"mount_point" yaml:"mount_point"`
	Name       string `json:"name" yaml:"name"`
	FSType     string `json:"fs_type" yaml:"fs_type"`
	Total      uint64 `json:"total" yaml:"total"`
	Free       uint64 `json:"free" yaml:"free"`
}

// Used returns the bytes in use.
func (d Disk) Used() uint64 {
	if d.Free > d.Total {
		return 0
	}
	return d.Total - d.Free
}

// UsedPercent returns the used fraction as a percentage.
func (d Disk) UsedPercent() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Used()) / float64(d.Total) * 100
}

// Temperature is one sensor reading.
type Temperature struct {
	Label   string  `json:"label" yaml:"label"`
	Celsius float64 `json:"celsius" yaml:"celsius"`
}

// SystemInfo summarizes the host.
type SystemInfo struct {
	Platform      string `json:"platform" yaml:"platform"`
	TotalMemoryKB uint64 `json:"total_memory_kb" yaml:"total_memory_kb"`
	UsedMemoryKB  uint64 `json:"used_memory_kb" yaml:"used_memory_kb"`
}

// Provider runs the queries. The zero value is not usable; call New.
type Provider struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	sensors    func(ctx context.Context) ([]host.TemperatureStat, error)
	memory     func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	goos       string
}

// New returns a Provider backed by gopsutil.
func New() *Provider {
	return &Provider{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		sensors:    host.SensorsTemperaturesWithContext,
		memory:     mem.VirtualMemoryWithContext,
		goos:       runtime.GOOS,
	}
}

// Disks lists physical partitions with their capacity. Partitions whose
// usage cannot be read are skipped.
func (p *Provider) Disks(ctx context.Context) ([]Disk, error) {
	parts, err := p.partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	disks := make([]Disk, 0, len(parts))
	for _, part := range parts {
		usage, err := p.usage(ctx, part.Mountpoint)
		if err != nil {
			logger.Debug("skipping partition", "mount", part.Mountpoint, "error", err)
			continue
		}
		disks = append(disks, Disk{
			MountPoint: part.Mountpoint,
			Name:       part.Device,
			FSType:     part.Fstype,
			Total:      usage.Total,
			Free:       usage.Free,
		})
	}
	return disks, nil
}

// Temperatures returns readings from sensors that report a value. Some
// platforms return partial results together with a warning error; those
// results are kept.
func (p *Provider) Temperatures(ctx context.Context) ([]Temperature, error) {
	stats, err := p.sensors(ctx)
	if err != nil && len(stats) == 0 {
		return nil, fmt.Errorf("reading sensors: %w", err)
	}
	if err != nil {
		logger.Debug("partial sensor read", "error", err)
	}

	temps := make([]Temperature, 0, len(stats))
	for _, s := range stats {
		if s.Temperature <= 0 {
			continue
		}
		temps = append(temps, Temperature{Label: s.SensorKey, Celsius: s.Temperature})
	}
	return temps, nil
}

// System returns the platform name and memory totals in kilobytes.
func (p *Provider) System(ctx context.Context) (SystemInfo, error) {
	vm, err := p.memory(ctx)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("reading memory: %w", err)
	}
	return SystemInfo{
		Platform:      Platform(p.goos),
		TotalMemoryKB: vm.Total / types.KiB,
		UsedMemoryKB:  vm.Used / types.KiB,
	}, nil
}

// UsedMemoryKB returns used physical memory in kilobytes. It satisfies
// poller.Source through MemorySource.
func (p *Provider) UsedMemoryKB(ctx context.Context) (uint64, error) {
	vm, err := p.memory(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading memory: %w", err)
	}
	return vm.Used / types.KiB, nil
}

// MemorySource adapts a Provider to a poller source.
type MemorySource struct {
	Provider *Provider
}

// Read implements poller.Source.
func (m MemorySource) Read(ctx context.Context) (uint64, error) {
	return m.Provider.UsedMemoryKB(ctx)
}

// Platform maps a GOOS value to the user-facing platform name.
func Platform(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}
