package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/watcher"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, paths)
}

func (b *batches) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.got
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/project/b.lang")
		d.Add("/project/a.lang")
		d.Add("/project/b.lang")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, b.all(), 1)
		assert.Equal(t, []string{"/project/a.lang", "/project/b.lang"}, b.all()[0])
	})
}

func TestDebouncer_WindowRestartsOnAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/project/a.lang")
		time.Sleep(80 * time.Millisecond)
		d.Add("/project/b.lang")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, b.all(), "window restarts with every path")

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		require.Len(t, b.all(), 1)
		assert.Len(t, b.all()[0], 2)
	})
}

func TestDebouncer_SeparateBatches(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/project/a.lang")
		time.Sleep(150 * time.Millisecond)
		d.Add("/project/b.lang")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/project/a.lang"}, {"/project/b.lang"}}, b.all())
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/project/a.lang")
		d.Stop()
		d.Add("/project/b.lang")

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, b.all())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/project/a.lang")

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
	})
}
