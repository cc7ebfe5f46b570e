// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"os"

	"github.com/flashboost/flashboost/internal/runbatch"
	"github.com/flashboost/flashboost/internal/sysinfo"
)

// Built-in recipe names.
const (
	StartupTuning    = "startup-tuning"
	LightClean       = "light-clean"
	DeepClean        = "deep-clean"
	FixPackages      = "fix-packages"
	BoostPerformance = "boost-performance"
	NetworkBoost     = "network-boost"
)

// Host holds the facts the built-in recipes are generated from.
type Host struct {
	PID               int
	Home              string
	WirelessInterface string
	HasCommand        func(name string) bool
}

// DetectHost inspects the running system.
func DetectHost(ctx context.Context) Host {
	home, _ := os.UserHomeDir()

	return Host{
		PID:               os.Getpid(),
		Home:              home,
		WirelessInterface: sysinfo.ActiveWirelessInterface(ctx),
		HasCommand:        sysinfo.CommandExists,
	}
}

func (h Host) has(name string) bool {
	return h.HasCommand != nil && h.HasCommand(name)
}

// Builtins returns the built-in recipes for host h.
func Builtins(h Host) []Recipe {
	return []Recipe{
		{
			Name:        StartupTuning,
			Description: "Lower swappiness and VFS cache pressure",
			Timeout:     runbatch.TuningStepTimeout,
			Commands: []runbatch.RawCommand{
				runbatch.Elevated("sysctl -w vm.swappiness=10"),
				runbatch.Elevated("sysctl -w vm.vfs_cache_pressure=50"),
			},
		},
		{
			Name:        LightClean,
			Description: "Drop the page cache and prune loose files in ~/.cache",
			Commands: runbatch.Commands(
				"sync",
				"pkexec sh -c 'echo 1 > /proc/sys/vm/drop_caches'",
				"find ~/.cache/ -maxdepth 1 -type f -delete",
				"find ~/.cache/ -maxdepth 1 -mindepth 1 -type d -empty -delete",
			),
		},
		{
			Name:        DeepClean,
			Description: "Drop all caches, empty ~/.cache and shrink the journal",
			Commands: runbatch.Commands(
				"sync",
				"pkexec sh -c 'echo 3 > /proc/sys/vm/drop_caches'",
				"find ~/.cache/ -maxdepth 1 -type f -delete",
				"find ~/.cache/ -maxdepth 1 -mindepth 1 -type d -exec rm -rf {} +",
				"pkexec journalctl --vacuum-size=100M",
			),
		},
		{
			Name:        FixPackages,
			Description: "Refresh package lists and repair interrupted installs",
			Commands: runbatch.Commands(
				"pkexec apt-get update",
				"pkexec dpkg --configure -a",
				"pkexec apt-get install --fix-broken -y",
			),
		},
		boostPerformance(h),
		networkBoost(h),
	}
}

var backgroundTimers = []string{"apt-daily.timer", "apt-daily-upgrade.timer"}

func boostPerformance(h Host) Recipe {
	r := Recipe{
		Name:        BoostPerformance,
		Description: "Pause background package timers and raise this process's priority",
		Confirm: fmt.Sprintf(
			"This stops %s and raises the priority of process %d. It may ask for your password. Continue?",
			"apt-daily.timer and apt-daily-upgrade.timer", h.PID),
	}

	for _, t := range backgroundTimers {
		r.Commands = append(r.Commands, runbatch.Elevated("systemctl stop "+t))
	}

	r.Commands = append(r.Commands, runbatch.Elevated(fmt.Sprintf("renice -n -10 -p %d", h.PID)))

	return r
}

var networkTweaks = []string{
	"sysctl -w net.ipv4.tcp_low_latency=1",
	"sysctl -w net.core.netdev_max_backlog=50000",
	"sysctl -w net.ipv4.tcp_timestamps=0",
	"sysctl -w net.ipv4.tcp_sack=1",
}

func networkBoost(h Host) Recipe {
	r := Recipe{
		Name:        NetworkBoost,
		Description: "Apply temporary network, CPU governor and Wi-Fi power tweaks",
		Confirm:     "This applies temporary network and CPU tweaks. It may ask for your password. Continue?",
	}

	for _, t := range networkTweaks {
		r.Commands = append(r.Commands, runbatch.Elevated(t))
	}

	r.Notes = append(r.Notes, "network sysctl tweaks ready")

	switch {
	case h.has("cpupower"):
		r.Commands = append(r.Commands, runbatch.Elevated("cpupower frequency-set -g performance"))
		r.Notes = append(r.Notes, "CPU governor will be set to performance with cpupower")
	case h.has("cpufreq-set"):
		r.Commands = append(r.Commands, runbatch.Elevated("cpufreq-set -r -g performance"))
		r.Notes = append(r.Notes, "CPU governor will be set to performance with cpufreq-set")
	default:
		r.Notes = append(r.Notes, "cpupower and cpufreq-set are not installed; CPU governor unchanged")
	}

	switch {
	case !h.has("iw"):
		r.Notes = append(r.Notes, "iw is not installed; Wi-Fi power saving unchanged")
	case h.WirelessInterface == "":
		r.Notes = append(r.Notes, "no active Wi-Fi interface found")
	default:
		r.Commands = append(r.Commands,
			runbatch.Elevated(fmt.Sprintf("iw dev %s set power_save off", h.WirelessInterface)))
		r.Notes = append(r.Notes, fmt.Sprintf("Wi-Fi power saving will be turned off for %s", h.WirelessInterface))
	}

	return r
}
