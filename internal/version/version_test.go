package version

import (
	"strings"
	"testing"
)

func TestGet_Defaults(t *testing.T) {
	info := Get()

	if info.Version != "dev" {
		t.Errorf("expected dev version, got %s", info.Version)
	}
	if info.Commit != "unknown" {
		t.Errorf("expected unknown commit, got %s", info.Commit)
	}
	if info.Date != "unknown" {
		t.Errorf("expected unknown date, got %s", info.Date)
	}
}

func TestInfo_String(t *testing.T) {
	s := Info{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01"}.String()

	for _, part := range []string{"version=1.2.3", "commit=abc1234", "date=2026-01-01"} {
		if !strings.Contains(s, part) {
			t.Errorf("expected %q in %q", part, s)
		}
	}
}
