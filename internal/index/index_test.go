package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex/internal/core/domain"
)

func doc(id, filename, content string, categories ...string) domain.Document {
	return domain.Document{
		ID:         id,
		Filename:   filename,
		Path:       filename,
		FullPath:   "/docs/" + filename,
		Content:    content,
		Extension:  ".txt",
		Modified:   time.Now(),
		Categories: categories,
	}
}

func TestEngine_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("unbuilt index returns empty results", func(t *testing.T) {
		e := NewEngine()

		hits, err := e.Search(ctx, "brand", 10)

		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, nil))

		_, err := e.Search(ctx, "   ", 10)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("filename matches outrank content matches", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "notes.txt", "the launch plan for the event launch"),
			doc("b", "launch-plan.txt", "some unrelated words"),
		}))

		hits, err := e.Search(ctx, "launch", 10)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "b", hits[0].DocID, "filename boost should dominate raw frequency")
	})

	t.Run("matching more distinct terms ranks higher", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "one.txt", "brand strategy overview"),
			doc("b", "two.txt", "brand brand brand brand brand brand brand brand brand brand"),
		}))

		hits, err := e.Search(ctx, "brand strategy", 10)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "a", hits[0].DocID)
	})

	t.Run("category matches are boosted", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "one.txt", "nothing relevant", "Analytics"),
			doc("b", "two.txt", "analytics mentioned once in passing text"),
		}))

		hits, err := e.Search(ctx, "analytics", 10)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "a", hits[0].DocID)
	})

	t.Run("limit truncates results", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "a.txt", "campaign"),
			doc("b", "b.txt", "campaign"),
			doc("c", "c.txt", "campaign"),
		}))

		hits, err := e.Search(ctx, "campaign", 2)

		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("ties break by document id ascending", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("b", "x.txt", "survey results"),
			doc("a", "y.txt", "survey results"),
		}))

		hits, err := e.Search(ctx, "survey", 10)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "a", hits[0].DocID)
		assert.Equal(t, "b", hits[1].DocID)
	})

	t.Run("no match yields empty results", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "a.txt", "brand strategy"),
		}))

		hits, err := e.Search(ctx, "zebra", 10)

		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestEngine_Build(t *testing.T) {
	ctx := context.Background()

	t.Run("rebuild fully replaces postings", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "a.txt", "obsolete campaign"),
		}))

		// Rebuild without document "a": no stale postings may remain.
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("b", "b.txt", "fresh launch"),
		}))

		hits, err := e.Search(ctx, "campaign", 10)
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = e.Search(ctx, "launch", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "b", hits[0].DocID)
	})

	t.Run("rebuild from identical records is deterministic", func(t *testing.T) {
		docs := []domain.Document{
			doc("a", "plan.txt", "brand campaign metrics", "Analytics"),
			doc("b", "report.txt", "campaign performance report", "Analytics"),
			doc("c", "notes.txt", "brand identity notes", "Brand Strategy"),
		}

		e1 := NewEngine()
		require.NoError(t, e1.Build(ctx, docs))
		e2 := NewEngine()
		require.NoError(t, e2.Build(ctx, docs))

		first, err := e1.Search(ctx, "brand campaign", 10)
		require.NoError(t, err)
		second, err := e2.Search(ctx, "brand campaign", 10)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("repeated query terms do not double count", func(t *testing.T) {
		e := NewEngine()
		require.NoError(t, e.Build(ctx, []domain.Document{
			doc("a", "a.txt", "campaign"),
		}))

		once, err := e.Search(ctx, "campaign", 10)
		require.NoError(t, err)
		twice, err := e.Search(ctx, "campaign campaign", 10)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	})
}
