package cargo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want ItemKind
	}{
		{"small", ItemSmall},
		{"heavy", ItemHeavy},
		{"Refrigerated", ItemRefrigerated},
		{" liquid ", ItemLiquid},
	}
	for _, tt := range tests {
		it, err := NewItem(tt.kind, "i1", 12.5, 4, "c1")
		require.NoError(t, err, tt.kind)
		assert.Equal(t, tt.want, it.Kind)
		assert.Equal(t, "c1", it.ContainerID)
		assert.InDelta(t, 50.0, it.TotalWeight(), 1e-9)
	}

	_, err := NewItem("gas", "i1", 1, 1, "")
	require.ErrorIs(t, err, ErrUnknownItemKind)
	_, err = NewItem("small", "i1", 0, 1, "")
	require.ErrorIs(t, err, ErrInvalidItem)
	_, err = NewItem("small", "i1", 1, 0, "")
	require.ErrorIs(t, err, ErrInvalidItem)
}

func mustItem(t *testing.T, kind string, weight float64, count int, containerID string) Item {
	t.Helper()
	it, err := NewItem(kind, kind, weight, count, containerID)
	require.NoError(t, err)
	return it
}

func TestPack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		special  string
		items    []Item
		weight   float64
		category Category
	}{
		{"light stays basic", "", []Item{mustItem(t, "liquid", 100, 20, "")}, 2000, Basic},
		{"heavy goods", "", []Item{mustItem(t, "small", 10, 100, "c"), mustItem(t, "heavy", 500, 5, "c")}, 3500, Heavy},
		{"refrigerated goods", "", []Item{mustItem(t, "refrigerated", 40, 100, "c")}, 4000, Refrigerated},
		{"liquid goods", "", []Item{mustItem(t, "liquid", 1000, 4, "")}, 4000, Liquid},
		{"code wins over goods", "L", []Item{mustItem(t, "refrigerated", 40, 100, "")}, 4000, Liquid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Pack("c", tt.special, tt.items)
			require.NoError(t, err)
			assert.Equal(t, "c", c.ID)
			assert.InDelta(t, tt.weight, c.Weight, 1e-9)
			assert.Equal(t, tt.category, c.Category)
		})
	}
}

func TestPack_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Pack("c", "", nil)
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = Pack("c", "", []Item{mustItem(t, "small", 10, 1, "other")})
	require.ErrorIs(t, err, ErrInvalidItem)

	mixed := []Item{mustItem(t, "refrigerated", 2000, 1, ""), mustItem(t, "liquid", 2000, 1, "")}
	_, err = Pack("c", "", mixed)
	require.ErrorIs(t, err, ErrInvalidCategory)

	c, err := Pack("c", "R", mixed)
	require.NoError(t, err)
	assert.Equal(t, Refrigerated, c.Category)
}
