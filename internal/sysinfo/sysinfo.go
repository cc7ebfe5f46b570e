// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysinfo

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"
)

// NotAvailable is the neutral temperature reading.
const NotAvailable = "N/A"

// Provider reports host metrics. Implementations never fail: an unreadable metric
// is reported as 0 or NotAvailable.
type Provider interface {
	CPUPercent(ctx context.Context) float64
	RAMPercent(ctx context.Context) float64
	DiskPercent(ctx context.Context, path string) float64
	Temperature(ctx context.Context) string
}

// Seams for tests.
var (
	cpuPercent    = cpu.PercentWithContext
	virtualMemory = mem.VirtualMemoryWithContext
	diskUsage     = disk.UsageWithContext
	temperatures  = sensors.TemperaturesWithContext
	lookPath      = exec.LookPath
)

// preferredSensors are checked in order before falling back to any sensor.
var preferredSensors = []string{"coretemp", "k10temp", "acpitz"}

var _ Provider = Host{}

// Host is the Provider backed by the running system.
type Host struct{}

// CPUPercent returns the CPU utilisation since the previous call.
func (Host) CPUPercent(ctx context.Context) float64 {
	v, err := cpuPercent(ctx, 0, false)
	if err != nil || len(v) == 0 {
		ctxlog.Debug(ctx, "cpu percent unavailable", "error", err)
		return 0
	}

	return sanitise(v[0])
}

// RAMPercent returns the used share of physical memory.
func (Host) RAMPercent(ctx context.Context) float64 {
	v, err := virtualMemory(ctx)
	if err != nil || v == nil {
		ctxlog.Debug(ctx, "memory usage unavailable", "error", err)
		return 0
	}

	return sanitise(v.UsedPercent)
}

// DiskPercent returns the used share of the filesystem holding path.
func (Host) DiskPercent(ctx context.Context, path string) float64 {
	v, err := diskUsage(ctx, path)
	if err != nil || v == nil {
		ctxlog.Debug(ctx, "disk usage unavailable", "path", path, "error", err)
		return 0
	}

	return sanitise(v.UsedPercent)
}

// Temperature returns the CPU package temperature formatted as "NN°C".
func (Host) Temperature(ctx context.Context) string {
	// Partial readings come back with a warnings error; use them anyway.
	temps, err := temperatures(ctx)
	if len(temps) == 0 {
		ctxlog.Debug(ctx, "temperature unavailable", "error", err)
		return NotAvailable
	}

	t, ok := pickTemperature(temps)
	if !ok {
		return NotAvailable
	}

	return fmt.Sprintf("%.0f°C", t)
}

func pickTemperature(temps []sensors.TemperatureStat) (float64, bool) {
	for _, family := range preferredSensors {
		var first *sensors.TemperatureStat

		for i := range temps {
			key := strings.ToLower(temps[i].SensorKey)
			if !strings.HasPrefix(key, family) || temps[i].Temperature <= 0 {
				continue
			}

			if strings.Contains(key, "package") || strings.Contains(key, "tdie") {
				return temps[i].Temperature, true
			}

			if first == nil {
				first = &temps[i]
			}
		}

		if first != nil {
			return first.Temperature, true
		}
	}

	for _, t := range temps {
		if t.Temperature > 0 {
			return t.Temperature, true
		}
	}

	return 0, false
}

func sanitise(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return math.Min(v, 100)
}

// CommandExists reports whether name resolves to an executable on PATH.
func CommandExists(name string) bool {
	if name == "" {
		return false
	}

	_, err := lookPath(name)

	return err == nil
}

// Snapshot is one sample of every metric.
type Snapshot struct {
	CPU         float64
	RAM         float64
	Disk        float64
	Temperature string
}

// Sample reads every metric from p for the filesystem at path.
func Sample(ctx context.Context, p Provider, path string) Snapshot {
	return Snapshot{
		CPU:         p.CPUPercent(ctx),
		RAM:         p.RAMPercent(ctx),
		Disk:        p.DiskPercent(ctx, path),
		Temperature: p.Temperature(ctx),
	}
}

// String renders the snapshot on one line.
func (s Snapshot) String() string {
	return fmt.Sprintf("CPU %.1f%% (%s)  RAM %.1f%%  Disk %.1f%%", s.CPU, s.Temperature, s.RAM, s.Disk)
}
