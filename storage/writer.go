/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"sync"
	"time"
)

const writeTimeout = 5 * time.Second

type pendingOp struct {
	value  []byte
	delete bool
}

// Writer queues saves and deletes and applies them from a background
// goroutine, so callers never wait on the backend. Repeated writes to the
// same key collapse into the latest one.
type Writer struct {
	kv   KV
	logf func(format string, args ...any)

	mu       sync.Mutex
	pending  map[string]pendingOp
	inflight map[string]pendingOp
	closed   bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func NewWriter(kv KV, logf func(format string, args ...any)) *Writer {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	w := &Writer{
		kv:      kv,
		logf:    logf,
		pending:  make(map[string]pendingOp),
		inflight: make(map[string]pendingOp),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go w.run()

	return w
}

// Load returns a queued or in-flight value if there is one, otherwise asks
// the backend.
func (w *Writer) Load(ctx context.Context, key string) ([]byte, error) {
	w.mu.Lock()
	op, ok := w.pending[key]
	if !ok {
		op, ok = w.inflight[key]
	}
	w.mu.Unlock()

	if ok {
		if op.delete {
			return nil, ErrNotFound
		}
		return append([]byte(nil), op.value...), nil
	}

	return w.kv.Load(ctx, key)
}

func (w *Writer) Save(_ context.Context, key string, value []byte) error {
	w.enqueue(key, pendingOp{value: append([]byte(nil), value...)})
	return nil
}

func (w *Writer) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		w.enqueue(k, pendingOp{delete: true})
	}
	return nil
}

func (w *Writer) enqueue(key string, op pendingOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending[key] = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]pendingOp)
	for key, op := range batch {
		w.inflight[key] = op
	}
	w.mu.Unlock()

	for key, op := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)

		var err error
		if op.delete {
			err = w.kv.Delete(ctx, key)
		} else {
			err = w.kv.Save(ctx, key, op.value)
		}

		cancel()

		// A newer write may have been queued meanwhile; pending still covers it.
		w.mu.Lock()
		delete(w.inflight, key)
		w.mu.Unlock()

		if err != nil {
			w.logf("STORE: Dropped write to %q: %v", key, err)
		}
	}
}

// Close applies everything still queued and stops the goroutine. The
// underlying KV is left open.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.done

	return nil
}
