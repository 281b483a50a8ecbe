package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.pprof"),
		Mem:   filepath.Join(dir, "mem.pprof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	sum := 0
	for i := range 100000 {
		sum += i
	}
	_ = sum
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, p := range []string{opts.CPU, opts.Mem, opts.Trace} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
	info, err := os.Stat(opts.Mem)
	if err == nil && info.Size() == 0 {
		t.Errorf("heap profile is empty")
	}
}

func TestStartFailsOnBadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing", "cpu.pprof")
	if _, err := Start(Options{CPU: bad}); err == nil {
		t.Fatalf("expected error for %s", bad)
	}
	// CPU profiling must not be left running after the failure.
	s, err := Start(Options{CPU: filepath.Join(t.TempDir(), "ok.pprof")})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestOptionsEnabled(t *testing.T) {
	if (Options{}).Enabled() {
		t.Fatalf("zero options must be disabled")
	}
	if !(Options{Mem: "x"}).Enabled() {
		t.Fatalf("mem-only options must be enabled")
	}
}
