// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package recipe holds the named maintenance actions a user can run.
//
// A recipe is an ordered list of commands plus presentation metadata. The built-in
// recipes are generated from facts about the host; further recipes can be loaded
// from YAML or HCL files, either local or fetched with go-getter.
//
// YAML files hold a list under recipes. A command is either a string, classified by
// its pkexec prefix, or a mapping with run and an explicit elevated flag:
//
//	recipes:
//	  - name: docker-prune
//	    description: Remove unused containers and images
//	    confirm: This deletes stopped containers. Continue?
//	    timeout: 5m
//	    commands:
//	      - docker system prune -f
//	      - run: journalctl --vacuum-time=3d
//	        elevated: true
//
// A recipe without commands is rejected when run unless it sets allow_empty, in
// which case it finishes with nothing to do.
//
// HCL files use one action block per recipe and may refer to the variables pid,
// home and wifi:
//
//	action "wifi-fix" {
//	  description = "Turn off power saving on ${wifi}"
//	  command {
//	    run      = "iw dev ${wifi} set power_save off"
//	    elevated = true
//	  }
//	}
package recipe
