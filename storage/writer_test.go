/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedKV blocks every Save until the gate is opened.
type gatedKV struct {
	*Memory

	started chan string
	gate    chan struct{}

	mu    sync.Mutex
	saves []string
}

func newGatedKV() *gatedKV {
	return &gatedKV{
		Memory:  NewMemory(),
		started: make(chan string, 16),
		gate:    make(chan struct{}),
	}
}

func (g *gatedKV) Save(ctx context.Context, key string, value []byte) error {
	g.started <- string(value)
	<-g.gate

	g.mu.Lock()
	g.saves = append(g.saves, string(value))
	g.mu.Unlock()

	return g.Memory.Save(ctx, key, value)
}

type failingKV struct{ *Memory }

func (failingKV) Save(context.Context, string, []byte) error {
	return errors.New("read-only")
}

func TestWriterAppliesOnClose(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	w := NewWriter(m, nil)

	require.NoError(t, w.Save(ctx, "board", []byte("1")))
	require.NoError(t, w.Save(ctx, "scores", []byte("2")))
	require.NoError(t, w.Close())

	v, err := m.Load(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	v, err = m.Load(ctx, "scores")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))

	require.NoError(t, w.Save(ctx, "board", []byte("3")))
	v, _ = m.Load(ctx, "board")
	assert.Equal(t, "1", string(v), "writes after close are dropped")

	assert.NoError(t, w.Close())
}

func TestWriterCoalescesAndServesPending(t *testing.T) {
	ctx := context.Background()
	kv := newGatedKV()
	w := NewWriter(kv, nil)

	require.NoError(t, w.Save(ctx, "board", []byte("first")))

	select {
	case v := <-kv.started:
		assert.Equal(t, "first", v)
	case <-time.After(time.Second):
		t.Fatal("writer never picked up the first save")
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Save(ctx, "board", fmt.Appendf(nil, "v%d", i)))
	}

	v, err := w.Load(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, "v4", string(v))

	close(kv.gate)
	require.NoError(t, w.Close())

	kv.mu.Lock()
	defer kv.mu.Unlock()
	assert.Equal(t, []string{"first", "v4"}, kv.saves)

	stored, err := kv.Memory.Load(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, "v4", string(stored))
}

func TestWriterDeleteShadowsBackend(t *testing.T) {
	ctx := context.Background()
	kv := newGatedKV()
	require.NoError(t, kv.Memory.Save(ctx, "board", []byte("old")))
	require.NoError(t, kv.Memory.Save(ctx, "scores", []byte("old")))

	w := NewWriter(kv, nil)

	require.NoError(t, w.Delete(ctx, "board", "scores"))

	_, err := w.Load(ctx, "board")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	_, err = kv.Memory.Load(ctx, "scores")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriterLogsFailures(t *testing.T) {
	var (
		mu     sync.Mutex
		logged []string
	)

	w := NewWriter(failingKV{NewMemory()}, func(format string, args ...any) {
		mu.Lock()
		logged = append(logged, fmt.Sprintf(format, args...))
		mu.Unlock()
	})

	require.NoError(t, w.Save(context.Background(), "board", []byte("1")))
	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], `Dropped write to "board": read-only`)
}

func TestWriterServesInflightWrites(t *testing.T) {
	ctx := context.Background()
	kv := newGatedKV()
	require.NoError(t, kv.Memory.Save(ctx, "board", []byte("old")))

	w := NewWriter(kv, nil)

	require.NoError(t, w.Save(ctx, "board", []byte("new")))

	select {
	case <-kv.started:
	case <-time.After(time.Second):
		t.Fatal("writer never picked up the save")
	}

	v, err := w.Load(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, "new", string(v), "a write being applied is still visible")

	close(kv.gate)
	require.NoError(t, w.Close())

	v, err = w.Load(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, "new", string(v))
}
