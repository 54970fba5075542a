package buildinfo

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02T03:04:05Z"
	info := Get()
	if info != (Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}) {
		t.Errorf("Get() = %+v", info)
	}
	if got, want := info.String(), "v1.2.3 (commit abc123, built 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if tmpl := Template(); !strings.Contains(tmpl, "version v1.2.3") || !strings.Contains(tmpl, "commit: abc123") {
		t.Errorf("Template() = %q", tmpl)
	}
}
