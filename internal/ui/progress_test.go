package ui

import (
	"errors"
	"strings"
	"testing"

	"dlc/internal/buildpipeline"
)

func TestApplyTracksStatusAndPercent(t *testing.T) {
	m := newProgressModel("build", []string{"a.dfl", "b.dfl"}, nil)
	if got := m.percent(); got != 0 {
		t.Fatalf("initial percent = %v", got)
	}

	m.apply(buildpipeline.Event{File: "a.dfl", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusWorking})
	if got := m.items[0].label(); got != "lowering" {
		t.Errorf("label = %q, want lowering", got)
	}
	if got := m.percent(); got != 0.4 {
		t.Errorf("percent = %v, want 0.4", got)
	}

	m.apply(buildpipeline.Event{File: "a.dfl", Status: buildpipeline.StatusDone})
	m.apply(buildpipeline.Event{File: "b.dfl", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusError, Err: errors.New("a.dfl:1:1: boom")})
	m.apply(buildpipeline.Event{File: "zzz.dfl", Status: buildpipeline.StatusDone})
	if got := m.percent(); got != 1 {
		t.Errorf("percent = %v, want 1", got)
	}
	finished, failed := m.counts()
	if finished != 2 || failed != 1 {
		t.Errorf("counts = %d, %d", finished, failed)
	}
}

func TestViewListsFilesAndErrors(t *testing.T) {
	m := newProgressModel("build", []string{"a.dfl", "b.dfl"}, nil)
	m.apply(buildpipeline.Event{File: "b.dfl", Status: buildpipeline.StatusError, Err: errors.New("unknown name x")})
	out := m.View()
	for _, want := range []string{"build [1/2, 1 failed]", "a.dfl", "queued", "unknown name x"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short.dfl", 20, "short.dfl"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
