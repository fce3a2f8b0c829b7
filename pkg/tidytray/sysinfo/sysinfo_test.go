package sysinfo

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProvider() *Provider {
	return &Provider{
		partitions: func(context.Context, bool) ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"},
				{Device: "/dev/sdb1", Mountpoint: "/data", Fstype: "xfs"},
				{Device: "/dev/sr0", Mountpoint: "/media/cdrom", Fstype: "iso9660"},
			}, nil
		},
		usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			switch path {
			case "/":
				return &disk.UsageStat{Path: path, Total: 100, Free: 40}, nil
			case "/data":
				return &disk.UsageStat{Path: path, Total: 1000, Free: 1000}, nil
			}
			return nil, errors.New("no medium")
		},
		sensors: func(context.Context) ([]host.TemperatureStat, error) {
			return []host.TemperatureStat{
				{SensorKey: "coretemp_package_id_0", Temperature: 48.5},
				{SensorKey: "acpitz", Temperature: 0},
			}, nil
		},
		memory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16 * 1024 * 1024 * 1024, Used: 1050 * 1024}, nil
		},
		goos: "darwin",
	}
}

func TestDisks(t *testing.T) {
	disks, err := fakeProvider().Disks(context.Background())
	require.NoError(t, err)
	require.Len(t, disks, 2, "unreadable partitions are skipped")

	assert.Equal(t, Disk{MountPoint: "/", Name: "/dev/sda1", FSType: "ext4", Total: 100, Free: 40}, disks[0])
	assert.Equal(t, uint64(60), disks[0].Used())
	assert.InDelta(t, 60.0, disks[0].UsedPercent(), 0.001)
	assert.Zero(t, disks[1].UsedPercent())
}

func TestDisks_Error(t *testing.T) {
	p := fakeProvider()
	p.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return nil, errors.New("boom")
	}
	_, err := p.Disks(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestTemperatures(t *testing.T) {
	temps, err := fakeProvider().Temperatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Temperature{{Label: "coretemp_package_id_0", Celsius: 48.5}}, temps)
}

func TestTemperatures_PartialResults(t *testing.T) {
	p := fakeProvider()
	p.sensors = func(context.Context) ([]host.TemperatureStat, error) {
		return []host.TemperatureStat{{SensorKey: "nvme", Temperature: 39}}, errors.New("some sensors unreadable")
	}
	temps, err := p.Temperatures(context.Background())
	require.NoError(t, err)
	assert.Len(t, temps, 1)

	p.sensors = func(context.Context) ([]host.TemperatureStat, error) {
		return nil, errors.New("not implemented")
	}
	_, err = p.Temperatures(context.Background())
	assert.Error(t, err)
}

func TestSystem(t *testing.T) {
	info, err := fakeProvider().System(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SystemInfo{Platform: "macos", TotalMemoryKB: 16 * 1024 * 1024, UsedMemoryKB: 1050}, info)
}

func TestMemorySource(t *testing.T) {
	v, err := MemorySource{Provider: fakeProvider()}.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1050), v)
}

func TestPlatform(t *testing.T) {
	assert.Equal(t, "macos", Platform("darwin"))
	assert.Equal(t, "windows", Platform("windows"))
	assert.Equal(t, "linux", Platform("linux"))
}
