package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/ship"
)

func TestRegistry_AddAndLookup(t *testing.T) {
	t.Parallel()

	r := New()
	a := port.New("A", port.Coordinates{})
	require.NoError(t, r.AddPort(a))
	require.ErrorIs(t, r.AddPort(port.New("A", port.Coordinates{Lat: 1})), ErrDuplicateID)

	s, err := ship.New(ship.Config{ID: "s1", Limits: ship.Limits{MaxAll: 1}}, a)
	require.NoError(t, err)
	require.NoError(t, r.AddShip(s))
	assert.True(t, a.IsDocked("s1"), "AddShip docks the ship at its port")
	require.ErrorIs(t, r.AddShip(s), ErrDuplicateID)

	got, err := r.Port("A")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = r.Port("Z")
	require.ErrorIs(t, err, ErrUnknownReference)
	_, err = r.Ship("nope")
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestRegistry_SortedListings(t *testing.T) {
	t.Parallel()

	r := New()
	for _, id := range []string{"10", "2", "1"} {
		require.NoError(t, r.AddPort(port.New(id, port.Coordinates{})))
	}
	var ids []string
	for _, p := range r.Ports() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"1", "2", "10"}, ids)
}

func TestRegistry_Move(t *testing.T) {
	t.Parallel()

	r := New()
	a := port.New("A", port.Coordinates{Lat: 0, Lon: 0}, port.WithMetric(port.Planar))
	b := port.New("B", port.Coordinates{Lat: 0, Lon: 10}, port.WithMetric(port.Planar))
	require.NoError(t, r.AddPort(a))
	require.NoError(t, r.AddPort(b))

	s, err := ship.New(ship.Config{ID: "s1", Fuel: 15, FuelPerKm: 1}, a)
	require.NoError(t, err)
	require.NoError(t, r.AddShip(s))

	require.NoError(t, r.Move(s, b))
	assert.False(t, a.IsDocked("s1"))
	assert.True(t, b.IsDocked("s1"))
	assert.Equal(t, []string{"s1"}, a.History())

	// 5 fuel left, 10 needed: nothing changes.
	require.ErrorIs(t, r.Move(s, a), ship.ErrInsufficientFuel)
	assert.True(t, b.IsDocked("s1"))
	assert.Empty(t, b.History())

	// Staying put keeps the ship docked and records no departure.
	require.NoError(t, r.Move(s, b))
	assert.True(t, b.IsDocked("s1"))
	assert.Empty(t, b.History())
}

func TestRegistry_FindContainer(t *testing.T) {
	t.Parallel()

	r := New()
	a := port.New("A", port.Coordinates{})
	require.NoError(t, r.AddPort(a))
	s, err := ship.New(ship.Config{ID: "s1", Limits: ship.Limits{MaxAll: 2}, MaxWeight: 1000}, a)
	require.NoError(t, err)
	require.NoError(t, r.AddShip(s))

	require.NoError(t, a.Receive(cargo.Container{ID: "1", Weight: 10}))
	require.NoError(t, s.Load(cargo.Container{ID: "2", Weight: 20}))

	p, _, ok := r.FindContainer("1")
	require.True(t, ok)
	assert.Same(t, a, p)

	_, sh, ok := r.FindContainer("2")
	require.True(t, ok)
	assert.Same(t, s, sh)

	_, _, ok = r.FindContainer("3")
	assert.False(t, ok)
}
