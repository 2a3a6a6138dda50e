package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/pkg/workerpool"
)

func TestSubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, n, count.Load())
}

func TestSubmitFullPool(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-blocker
	}))
	<-started

	// Queue capacity is 2x the single worker.
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)
	close(blocker)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), workerpool.ErrPoolClosed)
}

func TestShutdownDuringSubmitWait(t *testing.T) {
	// Submitters racing Shutdown must get ErrPoolClosed, never a panic
	// from a send on the closed task channel.
	for i := 0; i < 50; i++ {
		pool := workerpool.New(2)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 20; k++ {
					if err := pool.SubmitWait(func() {}); err != nil {
						assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
						return
					}
				}
			}()
		}

		pool.Shutdown()
		wg.Wait()
	}
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { panic("boom") }))
	require.NoError(t, pool.SubmitWait(func() { close(done) }))

	<-done
}
