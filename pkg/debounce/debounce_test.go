package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerRunsLastOnly(t *testing.T) {
	d := New(20 * time.Millisecond)

	var mu sync.Mutex
	var ran []string
	record := func(q string) func() {
		return func() {
			mu.Lock()
			ran = append(ran, q)
			mu.Unlock()
		}
	}

	for _, q := range []string{"a", "au", "aut", "autismo"} {
		require.True(t, d.Trigger(record(q)))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"autismo"}, ran)
	mu.Unlock()
	assert.False(t, d.Pending())
}

func TestSeparateBurstsBothRun(t *testing.T) {
	d := New(10 * time.Millisecond)
	var n atomic.Int32

	d.Trigger(func() { n.Add(1) })
	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 2*time.Millisecond)

	d.Trigger(func() { n.Add(1) })
	assert.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 2*time.Millisecond)
}

func TestFlush(t *testing.T) {
	d := New(time.Hour)
	ran := false

	assert.False(t, d.Flush(), "nothing pending")

	d.Trigger(func() { ran = true })
	assert.True(t, d.Pending())
	assert.True(t, d.Flush())
	assert.True(t, ran, "flush runs on the caller")
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
}

func TestFlushWaitsForRunningTask(t *testing.T) {
	d := New(time.Millisecond)
	started := make(chan struct{})
	release := make(chan struct{})
	var order []string
	var mu sync.Mutex

	d.Trigger(func() {
		close(started)
		<-release
		mu.Lock()
		order = append(order, "live")
		mu.Unlock()
	})
	<-started

	done := make(chan struct{})
	go func() {
		d.Flush()
		mu.Lock()
		order = append(order, "after flush")
		mu.Unlock()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)
	<-done

	assert.Equal(t, []string{"live", "after flush"}, order)
}

func TestCancel(t *testing.T) {
	d := New(10 * time.Millisecond)
	var n atomic.Int32

	d.Trigger(func() { n.Add(1) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, n.Load())
}

func TestStop(t *testing.T) {
	d := New(10 * time.Millisecond)
	var n atomic.Int32

	d.Trigger(func() { n.Add(1) })
	d.Stop()
	assert.False(t, d.Trigger(func() { n.Add(1) }))
	assert.False(t, d.Flush())

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, n.Load())
	assert.Equal(t, 10*time.Millisecond, d.Delay())
}
