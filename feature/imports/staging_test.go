package imports

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaging_PutGetDelete(t *testing.T) {
	s := NewStaging(time.Minute)
	id := s.Put(&Upload{Filename: "a.csv"})
	require.NotEmpty(t, id)

	u, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a.csv", u.Filename)
	assert.Equal(t, id, u.ID)

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))
	_, ok = s.Get(id)
	assert.False(t, ok)
}

func TestStaging_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewStaging(10 * time.Minute)
	s.now = func() time.Time { return now }

	old := s.Put(&Upload{Filename: "old.csv"})
	now = now.Add(11 * time.Minute)

	_, ok := s.Get(old)
	assert.False(t, ok, "expired entries are not served")
	assert.Equal(t, 0, s.Len(), "expired entry evicted on access")

	a := s.Put(&Upload{})
	now = now.Add(11 * time.Minute)
	b := s.Put(&Upload{})
	assert.Equal(t, 1, s.Len(), "put sweeps expired entries")
	_, ok = s.Get(a)
	assert.False(t, ok)
	_, ok = s.Get(b)
	assert.True(t, ok)
}

func TestStaging_GridParsesOncePerSheet(t *testing.T) {
	s := NewStaging(time.Minute)
	id := s.Put(&Upload{})

	var calls atomic.Int32
	parse := func(*Upload) (*Grid, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return newGrid([][]string{{"a"}}), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := s.Grid(id, "Sheet1", parse)
			assert.NoError(t, err)
			assert.Equal(t, 1, g.Width)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())

	_, err := s.Grid(id, "Sheet2", parse)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	_, err = s.Grid("missing", "Sheet1", parse)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}
