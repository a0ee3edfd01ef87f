package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"0.75", 0.75},
		{"3", 3.0},
		{"true", true},
		{"neon", "neon"},
		{"#ff0000", "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseParam(tt.in); got != tt.want {
				t.Errorf("parseParam(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
			}
		})
	}
}

func TestCommands(t *testing.T) {
	cmd := rootCmd()
	want := map[string]bool{"serve": false, "term": false, "bench": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestBenchCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"bench",
		"--settings", filepath.Join(t.TempDir(), "settings.json"),
		"--frames", "5",
		"--width", "160",
		"--height", "120",
		"--trace",
		"--set", "stress=0.8,colorTheme=neon",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Organic Life Respiration Pro") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestBenchCommandUnknownEffect(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"bench",
		"--settings", filepath.Join(t.TempDir(), "settings.json"),
		"--effect", "missing",
		"--frames", "1",
		"--trace",
	})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown effect")
	}
}
