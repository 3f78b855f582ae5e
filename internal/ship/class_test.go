package ship

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/harbor/internal/port"
)

func ptr[T any](v T) *T { return &v }

func TestParseClass(t *testing.T) {
	t.Parallel()

	c, err := ParseClass(" Medium ")
	require.NoError(t, err)
	assert.Equal(t, Medium, c)

	_, err = ParseClass("submarine")
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestSpec_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		class     Class
		maxWeight float64
		fuel      float64
	}{
		{Lightweight, 1000, 500},
		{Medium, 2000, 1000},
		{HeavyClass, 3000, 1500},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			t.Parallel()
			cfg, err := Spec{ID: "s", Class: tt.class}.Config()
			require.NoError(t, err)
			assert.Equal(t, tt.maxWeight, cfg.MaxWeight)
			assert.Equal(t, tt.fuel, cfg.Fuel)
			assert.Positive(t, cfg.Limits.MaxAll)
		})
	}
}

func TestSpec_Overrides(t *testing.T) {
	t.Parallel()

	at := port.New("A", port.Coordinates{})
	s, err := Spec{
		ID:           "big",
		Class:        Lightweight,
		MaxWeight:    ptr(1800.0),
		FuelCapacity: ptr(750.0),
		Limits:       &Limits{MaxAll: 3},
	}.Build(at)
	require.NoError(t, err)

	assert.Equal(t, "big", s.ID())
	assert.Equal(t, 1800.0, s.MaxWeight())
	assert.Equal(t, 750.0, s.Fuel())
	assert.Equal(t, 0.5, s.FuelPerKm(), "unset override keeps the class default")
	assert.Equal(t, Limits{MaxAll: 3}, s.Limits())
	assert.Same(t, at, s.Port())
}

func TestSpec_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Spec{ID: "s", Class: "barge"}.Config()
	require.ErrorIs(t, err, ErrUnknownClass)

	_, err = Spec{ID: "s", Class: Medium, FuelCapacity: ptr(-5.0)}.Config()
	require.ErrorIs(t, err, ErrInvalidConfig)
}
