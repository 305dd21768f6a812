package util

import (
	"path/filepath"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"windows": "rundll32",
		"darwin":  "open",
		"linux":   "xdg-open",
		"freebsd": "xdg-open",
	}
	for goos, want := range cases {
		cmd := browserCommand(goos, "http://localhost:20261")
		if got := filepath.Base(cmd.Args[0]); got != want {
			t.Fatalf("%s: got %q, want %q", goos, got, want)
		}
		if cmd.Args[len(cmd.Args)-1] != "http://localhost:20261" {
			t.Fatalf("%s: url not last argument: %v", goos, cmd.Args)
		}
	}
}

func TestFallbackBrowsers(t *testing.T) {
	t.Parallel()

	if len(fallbackBrowsers("linux")) == 0 || len(fallbackBrowsers("windows")) != 1 {
		t.Fatalf("unexpected fallbacks")
	}
	if fallbackBrowsers("darwin") != nil {
		t.Fatalf("darwin has no fallbacks")
	}
}
