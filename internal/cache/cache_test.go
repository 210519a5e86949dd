package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Notification.OrderID)
	}
	return ids
}

func sequences(entries []Entry) []uint64 {
	seqs := make([]uint64, 0, len(entries))
	for _, e := range entries {
		seqs = append(seqs, e.Sequence)
	}
	return seqs
}

func TestAppend_SequencesStartAtOneAndIncrement(t *testing.T) {
	c := New(0)
	for i := 1; i <= 50; i++ {
		seq := c.Append(Notification{OrderID: "o"})
		require.Equal(t, uint64(i), seq)
	}
	assert.Equal(t, uint64(50), c.LastSequence())
	assert.Equal(t, 50, c.Len())
}

func TestReadFrom_CursorScenario(t *testing.T) {
	c := New(0)
	for _, id := range []string{"x", "y", "z"} {
		c.Append(Notification{OrderID: id})
	}

	all := c.ReadFrom(1)
	assert.Equal(t, []uint64{1, 2, 3}, sequences(all))
	assert.Equal(t, []string{"x", "y", "z"}, orderIDs(all))

	last := c.ReadFrom(3)
	assert.Equal(t, []uint64{3}, sequences(last))
	assert.Equal(t, []string{"z"}, orderIDs(last))

	assert.Empty(t, c.ReadFrom(4))
}

func TestReadFrom_ZeroCursorMeansBeginning(t *testing.T) {
	c := New(0)
	c.Append(Notification{OrderID: "a"})
	assert.Equal(t, []uint64{1}, sequences(c.ReadFrom(0)))
}

func TestReadFrom_EmptyCache(t *testing.T) {
	assert.Empty(t, New(0).ReadFrom(1))
}

func TestReadFrom_IsRepeatableAndDetached(t *testing.T) {
	c := New(0)
	c.Append(Notification{OrderID: "a"})
	c.Append(Notification{OrderID: "b"})

	first := c.ReadFrom(1)
	second := c.ReadFrom(1)
	assert.Equal(t, first, second)

	first[0].Notification.OrderID = "mutated"
	assert.Equal(t, "a", c.ReadFrom(1)[0].Notification.OrderID)
}

func TestAppend_EvictsOldestWithoutRenumbering(t *testing.T) {
	c := New(2)
	for _, id := range []string{"a", "b", "c", "d"} {
		c.Append(Notification{OrderID: id})
	}

	assert.Equal(t, 2, c.Len())
	entries := c.ReadFrom(1)
	assert.Equal(t, []uint64{3, 4}, sequences(entries))
	assert.Equal(t, []string{"c", "d"}, orderIDs(entries))
	assert.Equal(t, []uint64{4}, sequences(c.ReadFrom(4)))
	assert.Equal(t, uint64(5), c.Append(Notification{OrderID: "e"}))
}

func TestConcurrentReadersObserveOrderedPrefixes(t *testing.T) {
	c := New(0)
	const total = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			c.Append(Notification{OrderID: "n"})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cursor uint64 = 1
			for cursor <= total {
				for _, e := range c.ReadFrom(cursor) {
					if e.Sequence != cursor {
						t.Errorf("gap: got %d want %d", e.Sequence, cursor)
						return
					}
					cursor++
				}
			}
		}()
	}

	wg.Wait()
}
