package storage

import (
	"errors"
	"sync"
	"testing"

	"smartinventory/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_UpdateAndRemove(t *testing.T) {
	st := New()
	st.Set(usecase.NewScanSession("s1"))

	err := st.Update("s1", func(s usecase.ScanSession) (usecase.ScanSession, error) {
		return s.WithSeen("Milk"), nil
	})
	require.NoError(t, err)

	got, ok := st.Get("s1")
	require.True(t, ok)
	assert.True(t, got.HasSeen("milk"))

	last, err := st.Remove("s1", func(s usecase.ScanSession) (usecase.ScanSession, error) {
		return s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk"}, last.SeenLabels())

	_, ok = st.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len())
}

func TestSessionStore_NotFound(t *testing.T) {
	st := New()
	noop := func(s usecase.ScanSession) (usecase.ScanSession, error) { return s, nil }

	assert.ErrorIs(t, st.Update("nope", noop), ErrSessionNotFound)
	_, err := st.Remove("nope", noop)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_UpdateKeepsSessionOnError(t *testing.T) {
	st := New()
	st.Set(usecase.NewScanSession("s1"))

	boom := errors.New("boom")
	err := st.Update("s1", func(s usecase.ScanSession) (usecase.ScanSession, error) {
		return s.WithSeen("Eggs"), boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := st.Get("s1")
	assert.True(t, got.HasSeen("eggs"))
}

func TestSessionStore_ConcurrentUpdatesSerialize(t *testing.T) {
	st := New()
	st.Set(usecase.NewScanSession("s1"))

	var wg sync.WaitGroup
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, l := range labels {
		wg.Add(1)
		go func(l string) {
			defer wg.Done()
			_ = st.Update("s1", func(s usecase.ScanSession) (usecase.ScanSession, error) {
				return s.WithSeen(l), nil
			})
		}(l)
	}
	wg.Wait()

	got, _ := st.Get("s1")
	assert.Len(t, got.SeenLabels(), len(labels))
}
