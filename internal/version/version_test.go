package version

import (
	"strings"
	"testing"
)

func TestString_Format(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "plume version ") {
		t.Fatalf("unexpected version string: %q", s)
	}
}

func TestString_UsesBuildVariables(t *testing.T) {
	oldV, oldB := Version, BuildTime
	defer func() { Version, BuildTime = oldV, oldB }()

	Version = "1.2.3"
	BuildTime = "2026-08-01"
	got := String()
	if !strings.Contains(got, "1.2.3") || !strings.Contains(got, "2026-08-01") {
		t.Fatalf("version string missing build info: %q", got)
	}
}
