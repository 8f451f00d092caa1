// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
)

func TestStyledStatusKeepsStatusWord(t *testing.T) {
	// Whatever the detected color profile is, the status word itself must
	// survive styling so piped output stays grep-able.
	for _, status := range []string{
		api.DocStatusPending,
		api.DocStatusProcessing,
		api.DocStatusReady,
		api.DocStatusFailed,
	} {
		if got := styledStatus(status); !strings.Contains(got, status) {
			t.Errorf("styledStatus(%q) = %q, status word lost", status, got)
		}
	}
}

func TestGetTerminalWidthAlwaysPositive(t *testing.T) {
	// Under a test runner stdout is usually a pipe; the fallback width
	// must kick in rather than returning zero.
	if w := GetTerminalWidth(); w <= 0 {
		t.Errorf("GetTerminalWidth = %d", w)
	}
}
