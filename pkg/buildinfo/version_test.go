package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestResolve(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	v, c, d := Resolve()
	if v != "v0.3.1" || c != "abc123" || d != "2026-01-02T03:04:05Z" {
		t.Errorf("Resolve() = %q, %q, %q", v, c, d)
	}
}

func TestResolvePrefersLdflags(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})
	Version, Commit = "v9.9.9", "fff"
	t.Cleanup(func() { Version, Commit = "dev", "none" })

	if v, c, _ := Resolve(); v != "v9.9.9" || c != "fff" {
		t.Errorf("Resolve() = %q, %q", v, c)
	}
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	withBuildInfo(t, nil)
	if v, c, d := Resolve(); v != "dev" || c != "none" || d != "unknown" {
		t.Errorf("Resolve() = %q, %q, %q", v, c, d)
	}
	if !strings.Contains(Template(), "{{.Name}} version dev") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(String(), "version: dev\n") {
		t.Errorf("String() = %q", String())
	}
}

func TestResolveDevelBuild(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if v, _, _ := Resolve(); v != "dev" {
		t.Errorf("Resolve() version = %q, want dev", v)
	}
}
