package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/fleet"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/ship"
)

// testStore creates a temporary SQLite store and registers cleanup.
func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "harbor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// testRegistry builds two ports, one ship that has left A for B with one
// container aboard, and one container left in A's pool.
func testRegistry(t *testing.T) *fleet.Registry {
	t.Helper()
	reg := fleet.New()
	a := port.New("A", port.Coordinates{Lat: 1, Lon: 2}, port.WithMetric(port.Planar))
	b := port.New("B", port.Coordinates{Lat: 1, Lon: 5}, port.WithMetric(port.Planar))
	require.NoError(t, reg.AddPort(a))
	require.NoError(t, reg.AddPort(b))

	c1, err := cargo.New("c1", 4000, "L")
	require.NoError(t, err)
	c2, err := cargo.New("c2", 100, "")
	require.NoError(t, err)
	require.NoError(t, a.Receive(c2))

	s, err := ship.New(ship.Config{ID: "s1", Fuel: 10, FuelPerKm: 1, MaxWeight: 8000, Limits: ship.Limits{MaxAll: 2, MaxHeavy: 1, MaxLiquid: 1}}, a)
	require.NoError(t, err)
	require.NoError(t, reg.AddShip(s))
	require.NoError(t, s.Load(c1))
	require.NoError(t, reg.Move(s, b))
	return reg
}

func TestNewSQLiteStore_WAL(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSaveRun_LoadPort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	run := Run{ID: "r1", Scenario: "voyage.json", Distance: "planar", Applied: 7, Rejected: 1}
	require.NoError(t, s.SaveRun(ctx, run, testRegistry(t)))

	a, err := s.LoadPort(ctx, "r1", "A")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, a.Longitude, 1e-9)
	require.Len(t, a.Containers, 1)
	assert.Equal(t, "c2", a.Containers[0].ID)
	assert.Equal(t, cargo.Basic, a.Containers[0].Category)
	assert.Empty(t, a.Ships)
	assert.Equal(t, []string{"s1"}, a.History)

	b, err := s.LoadPort(ctx, "r1", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, b.Ships)

	// A stored snapshot rebuilds into a live port.
	p, err := port.FromSnapshot(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, p.History())

	_, err = s.LoadPort(ctx, "r1", "Z")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRun_Ships(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1"}, testRegistry(t)))

	ships, err := s.Ships(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, ships, 1)
	assert.Equal(t, "B", ships[0].PortID)
	assert.InDelta(t, 7.0, ships[0].Fuel, 1e-9)
	assert.InDelta(t, 8000.0, ships[0].MaxWeight, 1e-9)
	assert.Equal(t, ship.Limits{MaxAll: 2, MaxHeavy: 1, MaxLiquid: 1}, ships[0].Limits)
	assert.InDelta(t, 16000.0, ships[0].Consumption, 1e-9, "4000 kg liquid at rate 4")
	require.Len(t, ships[0].Containers, 1)
	assert.Equal(t, cargo.Liquid, ships[0].Containers[0].Category)
}

func TestLoadPort_DockedInArrivalOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	reg := fleet.New()
	a := port.New("A", port.Coordinates{}, port.WithMetric(port.Planar))
	b := port.New("B", port.Coordinates{Lon: 1}, port.WithMetric(port.Planar))
	require.NoError(t, reg.AddPort(a))
	require.NoError(t, reg.AddPort(b))
	for _, id := range []string{"s3", "s1", "s2"} {
		sh, err := ship.New(ship.Config{ID: id, Fuel: 10, FuelPerKm: 1, MaxWeight: 1000}, b)
		require.NoError(t, err)
		require.NoError(t, reg.AddShip(sh))
	}
	// s1 leaves B and returns, so it is now the last to arrive.
	s1, err := reg.Ship("s1")
	require.NoError(t, err)
	require.NoError(t, reg.Move(s1, a))
	require.NoError(t, reg.Move(s1, b))
	require.Equal(t, []string{"s3", "s2", "s1"}, b.Ships())

	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1"}, reg))
	got, err := s.LoadPort(ctx, "r1", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s2", "s1"}, got.Ships)

	ships, err := s.Ships(ctx, "r1")
	require.NoError(t, err)
	ids := make([]string, 0, len(ships))
	for _, st := range ships {
		ids = append(ids, st.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids, "ship listing stays sorted by ID")
}

func TestSaveRun_ReplacesAndLists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1", Applied: 1}, testRegistry(t)))
	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1", Applied: 2}, testRegistry(t)))
	require.NoError(t, s.SaveRun(ctx, Run{ID: "r2"}, fleet.New()))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].ID, "newest first")
	assert.Equal(t, 2, runs[1].Applied)
	assert.False(t, runs[1].CreatedAt.IsZero())

	ships, err := s.Ships(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, ships, 1, "saving again replaces, never duplicates")
}
