// Package logio adapts printf style logging functions into io.Writers, so
// byte oriented output like a memory map dump can be routed through a
// test's t.Logf or a console logger.
package logio

import (
	"bytes"
	"sync"
)

// Writer buffers written bytes and emits each completed line through Logf.
// Writes are safe from multiple goroutines.
type Writer struct {
	Logf func(string, ...interface{})

	mu      sync.Mutex
	pending []byte
}

// Write appends p to the internal buffer and flushes any completed lines.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.Logf("%s", w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Sync emits any incomplete trailing line.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 {
		w.Logf("%s", w.pending)
		w.pending = w.pending[:0]
	}
	return nil
}

// Close calls Sync.
func (w *Writer) Close() error { return w.Sync() }
