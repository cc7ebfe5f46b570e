// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"regexp"
	"sync"

	"github.com/flashboost/flashboost/internal/excerpt"
)

// lineMatcher is an io.Writer that remembers whether any complete or trailing line
// of the stream matched pattern. Unlike an excerpt it sees every line.
type lineMatcher struct {
	pattern *regexp.Regexp

	mu      sync.Mutex
	partial []byte
	matched bool
}

func newLineMatcher(pattern *regexp.Regexp) *lineMatcher {
	return &lineMatcher{pattern: pattern}
}

// Write implements io.Writer. It never fails.
func (m *lineMatcher) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.matched {
		return len(p), nil
	}

	rest := p
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}

		m.partial = append(m.partial, rest[:i]...)
		m.check()
		m.partial = m.partial[:0]
		rest = rest[i+1:]

		if m.matched {
			return len(p), nil
		}
	}

	// Lines longer than an excerpt line are only matched on their head.
	if room := excerpt.MaxLineBytes - len(m.partial); room > 0 {
		m.partial = append(m.partial, rest[:min(len(rest), room)]...)
	}

	return len(p), nil
}

// Matched reports whether a line matched, including an unterminated last line.
func (m *lineMatcher) Matched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.matched && len(m.partial) > 0 {
		m.check()
	}

	return m.matched
}

func (m *lineMatcher) check() {
	if len(m.partial) > excerpt.MaxLineBytes {
		m.partial = m.partial[:excerpt.MaxLineBytes]
	}

	if m.pattern.Match(m.partial) {
		m.matched = true
	}
}
