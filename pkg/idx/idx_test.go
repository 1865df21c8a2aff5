package idx_test

import (
	"testing"
	"time"

	"github.com/croftbay/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewProducesValidULIDs(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.Len(t, id.String(), 26)

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewAtOrdersByTime(t *testing.T) {
	t.Parallel()

	earlier := idx.NewAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	later := idx.NewAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Less(t, earlier.String(), later.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := idx.Parse("definitely-not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestConcurrentGeneration(t *testing.T) {
	t.Parallel()

	const n = 64
	ids := make(chan idx.ID, n)
	for range n {
		go func() { ids <- idx.New() }()
	}

	seen := make(map[idx.ID]struct{}, n)
	for range n {
		id := <-ids
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
