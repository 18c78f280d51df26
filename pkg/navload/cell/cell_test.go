package cell

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_GetSet(t *testing.T) {
	t.Parallel()

	c := New("a")
	assert.Equal(t, "a", c.Get())
	assert.Equal(t, uint64(0), c.Version())

	c.Set("b")
	assert.Equal(t, "b", c.Get())
	assert.Equal(t, uint64(1), c.Version())
}

func TestCell_ZeroInitial(t *testing.T) {
	t.Parallel()

	var err error
	c := New(err)
	assert.Nil(t, c.Get())
}

func TestCell_WatchCoalesces(t *testing.T) {
	t.Parallel()

	c := New(0)
	ch, stop := c.Watch()
	defer stop()

	c.Set(1)
	c.Set(2)
	c.Set(3)

	select {
	case <-ch:
	default:
		t.Fatalf("expected a pending signal")
	}

	select {
	case <-ch:
		t.Fatalf("expected signals to coalesce")
	default:
	}
	assert.Equal(t, 3, c.Get())
}

func TestCell_StopWatching(t *testing.T) {
	t.Parallel()

	c := New(0)
	ch, stop := c.Watch()
	stop()
	stop()

	c.Set(1)
	select {
	case <-ch:
		t.Fatalf("stopped watcher must not be signalled")
	default:
	}
}

func TestCell_ConcurrentSet(t *testing.T) {
	t.Parallel()

	c := New(0)
	wg := &sync.WaitGroup{}
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set(i)
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(50), c.Version())
}
