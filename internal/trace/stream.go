package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes events to an io.Writer as they arrive.
type StreamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	level  Level
	format Format
	count  int
	closed bool
}

// NewStreamTracer creates a stream tracer. If w is an io.Closer other than
// a standard stream it is closed by Close.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{
		w:      bufio.NewWriter(w),
		level:  level,
		format: format,
	}
	if c, ok := w.(io.Closer); ok && !isStdStream(w) {
		t.closer = c
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.format == FormatChrome {
		if t.count == 0 {
			_, _ = t.w.WriteString("[\n")
		} else {
			_, _ = t.w.WriteString(",\n")
		}
	}
	t.count++
	_, _ = t.w.Write(data)
	// heartbeats must reach the output even if the pipeline is stuck
	if ev.Kind == KindHeartbeat {
		_ = t.w.Flush()
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Flush()
}

// Close terminates the Chrome array, flushes, and closes the output.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.format == FormatChrome {
		if t.count == 0 {
			_, _ = t.w.WriteString("[")
		}
		_, _ = t.w.WriteString("\n]\n")
	}
	err := t.w.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
