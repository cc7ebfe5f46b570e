// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysinfo

import (
	"context"
	"path"
	"regexp"

	"github.com/flashboost/flashboost/internal/ctxlog"
	"github.com/spf13/afero"
	"github.com/vishvananda/netlink"
)

// FsFactory returns the filesystem used to inspect /sys. Tests replace it.
var FsFactory = func() afero.Fs {
	return afero.NewReadOnlyFs(afero.NewOsFs())
}

var (
	linkList = netlink.LinkList

	wirelessName = regexp.MustCompile(`(?i)^(wl|wlan|wifi)`)
)

const sysClassNet = "/sys/class/net"

// ActiveWirelessInterface returns the name of the first wireless interface that is
// up, or "" when there is none.
func ActiveWirelessInterface(ctx context.Context) string {
	links, err := linkList()
	if err != nil {
		ctxlog.Debug(ctx, "cannot list network links", "error", err)
		return ""
	}

	fs := FsFactory()

	for _, l := range links {
		attrs := l.Attrs()
		if attrs == nil || attrs.OperState != netlink.OperUp {
			continue
		}

		if isWireless(fs, attrs.Name) {
			return attrs.Name
		}
	}

	return ""
}

func isWireless(fs afero.Fs, name string) bool {
	if wirelessName.MatchString(name) {
		return true
	}

	ok, err := afero.DirExists(fs, path.Join(sysClassNet, name, "wireless"))

	return err == nil && ok
}
