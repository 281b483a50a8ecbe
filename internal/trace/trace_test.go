package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeModule) {
		t.Fatal("phase level must stop at pass scope")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Fatal("debug level must include node scope")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatal("off level emitted")
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if lvl, err := ParseLevel(" Detail "); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", lvl, err)
	}
}

func TestSpanNestingThroughContext(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := BeginCtx(ctx, ScopePass, "optimize")
	inner, ctx := BeginCtx(ctx, ScopeModule, "round")
	PointCtx(ctx, ScopeNode, "oracle", "add", "cached", "false")
	inner.End("")
	outer.End("done")

	evs := ring.Snapshot()
	if len(evs) != 5 {
		t.Fatalf("got %d events", len(evs))
	}
	if evs[1].ParentID != outer.ID() {
		t.Fatalf("inner parent = %d, want %d", evs[1].ParentID, outer.ID())
	}
	if evs[2].Kind != KindPoint || evs[2].ParentID != inner.ID() || evs[2].Extra["cached"] != "false" {
		t.Fatalf("point event = %+v", evs[2])
	}
	if evs[4].Detail != "done" || evs[4].Extra["dur"] == "" {
		t.Fatalf("end event = %+v", evs[4])
	}
}

func TestDisabledScopeYieldsNopSpan(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	s := Begin(ring, ScopeNode, "oracle", 0)
	s.WithExtra("k", "v").End("")
	if s.ID() != 0 || len(ring.Snapshot()) != 0 {
		t.Fatal("node span recorded at phase level")
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ring, ScopePass, name, 0, "")
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ""); got != "bcd" {
		t.Fatalf("snapshot = %q", got)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatChrome); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "• d") {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestStreamChromeIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	s := Begin(st, ScopeDriver, "compile", 0)
	s.End("")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	var evs []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &evs); err != nil {
		t.Fatalf("invalid chrome output %q: %v", buf.String(), err)
	}
	if len(evs) != 2 || evs[0]["ph"] != "B" || evs[1]["ph"] != "E" {
		t.Fatalf("events = %v", evs)
	}
}

func TestNewPicksFormatFromPath(t *testing.T) {
	if detectFormat("out.ndjson") != FormatNDJSON || detectFormat("t.json") != FormatChrome || detectFormat("t.log") != FormatText {
		t.Fatal("detectFormat")
	}
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatal("off config must yield a disabled tracer")
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeDriver, "x", 0, "")
	_ = tr.Close()
	if !strings.Contains(buf.String(), "• x") {
		t.Fatalf("stream output = %q", buf.String())
	}
	if tr.(*MultiTracer).Ring() == nil {
		t.Fatal("both mode must include a ring")
	}
}
