package id_test

import (
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("generates valid length", func(t *testing.T) {
		t.Parallel()

		ulid := id.NewULID()
		assert.Len(t, ulid, 26, "ULID should be exactly 26 characters")
	})

	t.Run("uses only Crockford Base32 alphabet", func(t *testing.T) {
		t.Parallel()

		ulid := id.NewULID()
		// Crockford Base32: 0-9, A-Z excluding I, L, O, U
		validChars := regexp.MustCompile(`^[0-9A-HJ-NP-TV-Z]+$`)
		require.True(t, validChars.MatchString(ulid), "ULID contains invalid characters: %s", ulid)
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		t.Parallel()

		const iterations = 1000
		seen := make(map[string]bool, iterations)

		for range iterations {
			ulid := id.NewULID()
			require.False(t, seen[ulid], "duplicate ULID generated: %s", ulid)
			seen[ulid] = true
		}
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		t.Parallel()

		const iterations = 20
		ulids := make([]string, iterations)
		for i := range iterations {
			ulids[i] = id.NewULID()
			time.Sleep(2 * time.Millisecond)
		}

		sorted := make([]string, iterations)
		copy(sorted, ulids)
		sort.Strings(sorted)

		assert.Equal(t, sorted, ulids, "ULIDs generated over time should already be sorted")
	})

	t.Run("shares timestamp prefix within same millisecond", func(t *testing.T) {
		t.Parallel()

		a := id.NewULID()
		b := id.NewULID()
		// Generated back to back; the first few timestamp chars must agree.
		assert.Equal(t, a[:6], b[:6])
	})
}
