package id

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsUUID(t *testing.T) {
	v := New()
	assert.Len(t, v, 36)
	assert.True(t, IsUUID(v))
	assert.NotEqual(t, v, New())
	assert.False(t, IsUUID("not-a-uuid"))
}

func TestSortable_Length(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Len(t, Sortable(), SortableLen)
	}
}

func TestSortable_MonotonicWithinMillisecond(t *testing.T) {
	now := time.Now().Add(time.Hour)
	a := sortableAt(now)
	b := sortableAt(now)
	c := sortableAt(now)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestSortable_Concurrent(t *testing.T) {
	const n = 500
	var (
		mu  sync.Mutex
		ids = make([]string, 0, n)
		wg  sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := Sortable()
			mu.Lock()
			ids = append(ids, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, v := range ids {
		require.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
}

func TestSortable_SequentialOrder(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = Sortable()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestSortableTime(t *testing.T) {
	at := time.Date(2031, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	v := sortableAt(at)

	got, ok := SortableTime(v)
	require.True(t, ok)
	assert.Equal(t, at.UnixMilli(), got.UnixMilli())

	_, ok = SortableTime("short")
	assert.False(t, ok)
}

func TestIncrement(t *testing.T) {
	b := []byte{0x00, 0xFF}
	increment(b)
	assert.Equal(t, []byte{0x01, 0x00}, b)

	wrap := []byte{0xFF, 0xFF}
	increment(wrap)
	assert.Equal(t, []byte{0x00, 0x00}, wrap)
}
