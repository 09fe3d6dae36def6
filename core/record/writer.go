package record

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

type syncer interface {
	Sync() error
}

// Writer appends records as JSONL. It is safe for concurrent use; every
// Write emits one complete line and flushes it before returning.
type Writer struct {
	mu      sync.Mutex
	dst     io.Writer
	bw      *bufio.Writer
	durable bool
}

// NewWriter wraps dst. When durable is set and dst supports Sync (an *os.File),
// every write is also synced to stable storage.
func NewWriter(dst io.Writer, durable bool) *Writer {
	return &Writer{
		dst:     dst,
		bw:      bufio.NewWriter(dst),
		durable: durable,
	}
}

// Write appends rec followed by a newline.
func (w *Writer) Write(rec Record) error {
	data, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.bw.Write(data); err != nil {
		return fmt.Errorf("write record %s: %w", rec.ID, err)
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush record %s: %w", rec.ID, err)
	}
	if s, ok := w.dst.(syncer); ok && w.durable {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync record %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Close flushes pending data and closes dst if it is an io.Closer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if c, ok := w.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
