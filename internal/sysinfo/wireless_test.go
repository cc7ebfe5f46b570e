// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysinfo

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

func link(name string, state netlink.LinkOperState) netlink.Link {
	return &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: name, OperState: state}}
}

func TestActiveWirelessInterface(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/sys/class/net/radio0/wireless", 0o755))

	tests := []struct {
		name  string
		links []netlink.Link
		want  string
	}{
		{
			name:  "no links",
			links: nil,
		},
		{
			name:  "wired only",
			links: []netlink.Link{link("lo", netlink.OperUnknown), link("enp3s0", netlink.OperUp)},
		},
		{
			name:  "wireless down",
			links: []netlink.Link{link("wlp2s0", netlink.OperDown)},
		},
		{
			name:  "wireless up by name",
			links: []netlink.Link{link("enp3s0", netlink.OperUp), link("wlp2s0", netlink.OperUp)},
			want:  "wlp2s0",
		},
		{
			name:  "wireless up by sysfs",
			links: []netlink.Link{link("radio0", netlink.OperUp)},
			want:  "radio0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubs := gostub.Stub(&linkList, func() ([]netlink.Link, error) {
				return tt.links, nil
			})
			defer stubs.Reset()

			stubs.Stub(&FsFactory, func() afero.Fs {
				return fs
			})

			assert.Equal(t, tt.want, ActiveWirelessInterface(t.Context()))
		})
	}
}

func TestActiveWirelessInterface_ListError(t *testing.T) {
	stubs := gostub.Stub(&linkList, func() ([]netlink.Link, error) {
		return nil, errUnavailable
	})
	defer stubs.Reset()

	assert.Empty(t, ActiveWirelessInterface(t.Context()))
}

func TestIsWireless_NamePrefix(t *testing.T) {
	fs := afero.NewMemMapFs()

	tests := []struct {
		name string
		want bool
	}{
		{"wlp2s0", true},
		{"wlan0", true},
		{"WiFi0", true},
		{"eth-wlan", false},
		{"br-wifi", false},
		{"enp3s0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isWireless(fs, tt.name))
		})
	}
}
