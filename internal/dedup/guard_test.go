package dedup

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAndInsert_FirstAcceptsSecondRejects(t *testing.T) {
	g := NewGuard()

	assert.False(t, g.CheckAndInsert("A"))
	assert.False(t, g.CheckAndInsert("B"))
	assert.True(t, g.CheckAndInsert("A"))
	assert.True(t, g.CheckAndInsert("B"))
	assert.Equal(t, 2, g.Len())
}

func TestCheckAndInsert_ConcurrentSameKeyAcceptedOnce(t *testing.T) {
	g := NewGuard()

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.CheckAndInsert("same") {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}

func TestRemove_AllowsRetry(t *testing.T) {
	g := NewGuard()

	assert.False(t, g.CheckAndInsert("K"))
	g.Remove("K")
	assert.Zero(t, g.Len())
	assert.False(t, g.CheckAndInsert("K"))
	assert.True(t, g.CheckAndInsert("K"))

	g.Remove("missing")
	assert.Equal(t, 1, g.Len())
}
