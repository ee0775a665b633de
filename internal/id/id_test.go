package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsStable(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	a := Derive(ts, 42)
	assert.Equal(t, a, Derive(ts, 42))
	assert.NotEqual(t, a, Derive(ts, 43))
	assert.Len(t, a, 26)
}

func TestDeriveIsSortable(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	ids := make([]string, 100)
	for i := range ids {
		// several events can share a millisecond
		ids[i] = Derive(ts.Add(time.Duration(i/10)*time.Millisecond), int64(i+1))
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestDeriveRoundTripsTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 4, 14, 30, 0, 123000000, time.UTC)
	got, err := Time(Derive(ts, 7))
	require.NoError(t, err)
	assert.Equal(t, ts, got)
}

func TestTimeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}
