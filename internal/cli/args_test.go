// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestArgParserSubcommandAndPositional(t *testing.T) {
	p := NewArgParser([]string{"docs", "upload", "notes.md"})

	if p.Subcommand() != "docs" {
		t.Errorf("Subcommand = %q", p.Subcommand())
	}
	pos := p.Positional()
	if len(pos) != 2 || pos[0] != "upload" || pos[1] != "notes.md" {
		t.Errorf("Positional = %v", pos)
	}
}

func TestArgParserFlagFormats(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
		want string
	}{
		{"space separated", []string{"ask", "--model", "gpt-4o"}, "model", "gpt-4o"},
		{"equals sign", []string{"ask", "--model=gpt-4o"}, "model", "gpt-4o"},
		{"short flag", []string{"ask", "-m", "gpt-4o"}, "m", "gpt-4o"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewArgParser(tc.args)
			if got := p.Flag(tc.flag); got != tc.want {
				t.Errorf("Flag(%q) = %q, expected %q", tc.flag, got, tc.want)
			}
		})
	}
}

func TestArgParserBoolFlags(t *testing.T) {
	p := NewArgParser([]string{"docs", "upload", "f.pdf", "--wait"})

	if !p.BoolFlag("wait") {
		t.Error("wait flag should be set")
	}
	// --wait must not swallow a following positional: the docs dispatch
	// still needs both the action and the id.
	p = NewArgParser([]string{"docs", "--wait", "status", "doc-1"})
	if !p.BoolFlag("wait") {
		t.Error("wait flag should be set")
	}
	if p.Subcommand() != "docs" {
		t.Errorf("Subcommand = %q", p.Subcommand())
	}
	pos := p.Positional()
	if len(pos) != 2 || pos[0] != "status" || pos[1] != "doc-1" {
		t.Errorf("Positional = %v", pos)
	}
}

func TestArgParserExplicitBool(t *testing.T) {
	p := NewArgParser([]string{"docs", "--json=false"})
	if p.BoolFlag("json") {
		t.Error("json=false should parse as false")
	}
}

func TestArgParserFlagOr(t *testing.T) {
	p := NewArgParser([]string{"ask", "hello"})
	if got := p.FlagOr("model", "default-model"); got != "default-model" {
		t.Errorf("FlagOr = %q", got)
	}
}
