package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_HasFilterFlags(t *testing.T) {
	for _, name := range []string{"ext", "category", "project", "team", "from", "to", "semantic", "json"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func resetSearchFlags() {
	searchExt, searchCategory, searchProject, searchTeam = "", "", "", ""
	searchFrom, searchTo = "", ""
}

func TestBuildFilters(t *testing.T) {
	t.Run("empty flags yield empty filters", func(t *testing.T) {
		resetSearchFlags()

		filters, err := buildFilters()

		require.NoError(t, err)
		assert.True(t, filters.Empty())
	})

	t.Run("date range covers whole days", func(t *testing.T) {
		resetSearchFlags()
		defer resetSearchFlags()
		searchFrom = "2025-06-01"
		searchTo = "2025-06-30"

		filters, err := buildFilters()

		require.NoError(t, err)
		require.NotNil(t, filters.DateFrom)
		require.NotNil(t, filters.DateTo)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *filters.DateFrom)
		// The upper bound includes the last instant of the day.
		assert.True(t, filters.DateTo.After(time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)))
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		resetSearchFlags()
		defer resetSearchFlags()
		searchFrom = "June 1st"

		_, err := buildFilters()

		assert.Error(t, err)
	})

	t.Run("metadata flags map through", func(t *testing.T) {
		resetSearchFlags()
		defer resetSearchFlags()
		searchExt = ".pdf"
		searchCategory = "Analytics"

		filters, err := buildFilters()

		require.NoError(t, err)
		assert.Equal(t, ".pdf", filters.Extension)
		assert.Equal(t, "Analytics", filters.Category)
	})
}
