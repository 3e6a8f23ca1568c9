package loading

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartStopCounts(t *testing.T) {
	tr := NewTracker(nil)
	tr.Start()
	tr.Start()
	assert.Equal(t, 2, tr.Pending())
	assert.True(t, tr.IsLoading())

	tr.Stop()
	assert.True(t, tr.IsLoading())
	tr.Stop()
	assert.False(t, tr.IsLoading())
}

func TestStopNeverGoesNegative(t *testing.T) {
	tr := NewTracker(nil)
	tr.Stop()
	tr.Stop()
	assert.Equal(t, 0, tr.Pending())

	tr.Start()
	assert.Equal(t, 1, tr.Pending())
}

func TestResetAndSetLoading(t *testing.T) {
	tr := NewTracker(nil)
	tr.SetLoading(true)
	tr.SetLoading(true)
	tr.SetLoading(false)
	assert.Equal(t, 1, tr.Pending())

	tr.Reset()
	assert.False(t, tr.IsLoading())
}

func TestOnChangeFiresOnlyOnFlip(t *testing.T) {
	var flips []bool
	tr := NewTracker(func(loading bool, _ int) { flips = append(flips, loading) })

	tr.Start()
	tr.Start()
	tr.Stop()
	tr.Stop()
	tr.Stop()

	assert.Equal(t, []bool{true, false}, flips)
}

func TestConcurrentUse(t *testing.T) {
	tr := NewTracker(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Start()
			tr.Stop()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, tr.Pending())
}
