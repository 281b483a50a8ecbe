package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dlc/internal/driver"
)

type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordSink) final(file string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last Event
	for _, ev := range s.events {
		if ev.File == file {
			last = ev
		}
	}
	return last
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestBuildCompilesIndependently(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.dfl")
	bad := filepath.Join(dir, "sub", "bad.dfl")
	writeFile(t, good, "func main(n): n * 2\n")
	writeFile(t, bad, "func main(): y\n")

	files, err := ExpandInputs([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expanded = %v", files)
	}

	sink := &recordSink{}
	res, err := Build(context.Background(), &BuildRequest{
		Files:    files,
		BaseDir:  dir,
		Jobs:     2,
		Progress: sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", res.Failed())
	}
	if !errors.Is(res.Err(), driver.ErrSourceErrors) {
		t.Fatalf("Err() = %v", res.Err())
	}

	if _, err := os.Stat(filepath.Join(dir, "good.dis")); err != nil {
		t.Fatalf("missing output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "bad.dis")); !os.IsNotExist(err) {
		t.Fatalf("output written for a failing file: %v", err)
	}

	if ev := sink.final("good.dfl"); ev.Status != StatusDone {
		t.Errorf("good.dfl final event = %+v", ev)
	}
	if ev := sink.final("sub/bad.dfl"); ev.Status != StatusError {
		t.Errorf("sub/bad.dfl final event = %+v", ev)
	}
}

func TestBuildUsesNearestConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dlc.toml"), "[compile]\nentry = \"start\"\nextension = \".out\"\n")
	src := filepath.Join(dir, "p.dfl")
	writeFile(t, src, "func start(): 4\n")

	res, err := Build(context.Background(), &BuildRequest{Files: []string{src}})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}
	if got, want := res.Files[0].OutputPath, filepath.Join(dir, "p.out"); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	data, err := os.ReadFile(res.Files[0].OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "TRIV <= 4\n" {
		t.Fatalf("listing = %q", data)
	}
	if !res.Files[0].Timings.Has(StageParse) || !res.Files[0].Timings.Has(StageLower) {
		t.Error("stage timings not recorded")
	}
}

func TestBuildCancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "p.dfl")
	writeFile(t, src, "func main(): 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, &BuildRequest{Files: []string{src}, NoWrite: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestProgressFiles(t *testing.T) {
	base := t.TempDir()
	got := ProgressFiles([]string{
		filepath.Join(base, "b.dfl"),
		filepath.Join(base, "a", "c.dfl"),
		filepath.Join(base, "b.dfl"),
	}, base)
	if diff := cmp.Diff([]string{"a/c.dfl", "b.dfl"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestChannelSinkDropsAfterDone(t *testing.T) {
	ch := make(chan Event, 1)
	done := make(chan struct{})
	sink := ChannelSink{Ch: ch, Done: done}
	sink.OnEvent(Event{File: "a"})
	close(done)
	sink.OnEvent(Event{File: "b"})
	if got := (<-ch).File; got != "a" {
		t.Fatalf("first event = %q", got)
	}
	ChannelSink{}.OnEvent(Event{File: "c"})
}
