package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMergeRemoteWinsSharedIDs(t *testing.T) {
	local := []Product{
		{ID: "A", Name: "old"},
		{ID: "B", Name: "local-only"},
	}
	remote := []Product{
		{ID: "A", Name: "new"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 2)
	require.Equal(t, "A", merged[0].ID)
	require.Equal(t, "new", merged[0].Name)
	require.Equal(t, "B", merged[1].ID)
}

func TestMergeDeduplicatesFirstWins(t *testing.T) {
	remote := []Product{
		{ID: "A", Name: "first"},
		{ID: "A", Name: "second"},
	}

	merged := Merge(nil, remote)

	require.Len(t, merged, 1)
	require.Equal(t, "first", merged[0].Name)
}

func TestMergeEmptySides(t *testing.T) {
	require.Empty(t, Merge(nil, nil))

	local := []Product{{ID: "A"}}
	require.Equal(t, local, Merge(local, nil))

	remote := []Product{{ID: "B"}}
	require.Equal(t, remote, Merge(nil, remote))
}

func TestEqualComparesContent(t *testing.T) {
	now := time.Now().UTC()
	a := []Product{{ID: "A", Name: "x", Price: decimal.NewFromInt(10), UpdatedAt: now}}
	b := []Product{{ID: "A", Name: "x", Price: decimal.NewFromInt(10), UpdatedAt: now}}
	require.True(t, Equal(a, b))

	b[0].Name = "y"
	require.False(t, Equal(a, b))
	require.False(t, Equal(a, nil))
}

func TestNewProductIDShape(t *testing.T) {
	now := time.Unix(1700000000, 0)
	id := NewProductID("Ember Glow Candle!", now)
	require.Contains(t, id, "ember-glow-candle-")

	other := NewProductID("Ember Glow Candle!", now)
	require.NotEqual(t, id, other)

	require.Contains(t, NewProductID("   ", now), "product-")
}
