// Package store keeps the final state of simulation runs in a local SQLite
// database, so a run can be inspected after the process exits.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/fleet"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/ship"
)

// ErrNotFound is returned when a run or port is not in the store.
var ErrNotFound = errors.New("store: not found")

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT PRIMARY KEY,
    scenario   TEXT NOT NULL DEFAULT '',
    distance   TEXT NOT NULL DEFAULT '',
    applied    INTEGER NOT NULL DEFAULT 0,
    rejected   INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ports (
    run_id    TEXT NOT NULL,
    port_id   TEXT NOT NULL,
    latitude  REAL NOT NULL,
    longitude REAL NOT NULL,
    PRIMARY KEY (run_id, port_id)
);

CREATE TABLE IF NOT EXISTS ships (
    run_id           TEXT NOT NULL,
    ship_id          TEXT NOT NULL,
    port_id          TEXT NOT NULL,
    dock_seq         INTEGER NOT NULL DEFAULT 0,
    fuel             REAL NOT NULL,
    fuel_per_km      REAL NOT NULL,
    max_weight       REAL NOT NULL,
    max_containers   INTEGER NOT NULL DEFAULT 0,
    max_heavy        INTEGER NOT NULL DEFAULT 0,
    max_refrigerated INTEGER NOT NULL DEFAULT 0,
    max_liquid       INTEGER NOT NULL DEFAULT 0,
    consumption      REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, ship_id)
);

CREATE TABLE IF NOT EXISTS containers (
    run_id       TEXT NOT NULL,
    container_id TEXT NOT NULL,
    weight       REAL NOT NULL,
    category     TEXT NOT NULL,
    port_id      TEXT NOT NULL DEFAULT '',
    ship_id      TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, container_id)
);

CREATE TABLE IF NOT EXISTS departures (
    run_id  TEXT NOT NULL,
    port_id TEXT NOT NULL,
    seq     INTEGER NOT NULL,
    ship_id TEXT NOT NULL,
    PRIMARY KEY (run_id, port_id, seq)
);
`

// Run describes a stored run.
type Run struct {
	ID        string
	Scenario  string
	Distance  string
	Applied   int
	Rejected  int
	CreatedAt time.Time
}

// ShipState is the stored end state of a ship. Consumption is the summed
// per-km consumption of the hold when the run ended.
type ShipState struct {
	ID          string
	PortID      string
	Fuel        float64
	FuelPerKm   float64
	MaxWeight   float64
	Limits      ship.Limits
	Consumption float64
	Containers  []cargo.Container
}

// SQLiteStore implements run persistence on a SQLite database in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables WAL
// mode and busy timeout, and creates the schema tables if they do not exist.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one connection keeps the PRAGMAs below in
	// effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun records the run and the final state of every port, ship and
// container in reg. Saving the same run ID again replaces it.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, reg *fleet.Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin save run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range []string{"ports", "ships", "containers", "departures"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", run.ID); err != nil {
			return fmt.Errorf("store: clear %s for run %s: %w", table, run.ID, err)
		}
	}

	const upsertRun = `
		INSERT INTO runs (run_id, scenario, distance, applied, rejected)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			scenario = excluded.scenario, distance = excluded.distance,
			applied = excluded.applied, rejected = excluded.rejected`
	if _, err := tx.ExecContext(ctx, upsertRun, run.ID, run.Scenario, run.Distance, run.Applied, run.Rejected); err != nil {
		return fmt.Errorf("store: save run %s: %w", run.ID, err)
	}

	// dockSeq is each docked ship's position in its port's arrival order.
	dockSeq := make(map[string]int)
	for _, p := range reg.Ports() {
		for seq, shipID := range p.Ships() {
			dockSeq[shipID] = seq
		}
		c := p.Coordinates()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ports (run_id, port_id, latitude, longitude) VALUES (?, ?, ?, ?)",
			run.ID, p.ID(), c.Lat, c.Lon); err != nil {
			return fmt.Errorf("store: save port %s: %w", p.ID(), err)
		}
		for _, ct := range p.Containers() {
			if err := insertContainer(ctx, tx, run.ID, ct, p.ID(), ""); err != nil {
				return err
			}
		}
		for seq, shipID := range p.History() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO departures (run_id, port_id, seq, ship_id) VALUES (?, ?, ?, ?)",
				run.ID, p.ID(), seq, shipID); err != nil {
				return fmt.Errorf("store: save departure from %s: %w", p.ID(), err)
			}
		}
	}

	const insertShip = `
		INSERT INTO ships (run_id, ship_id, port_id, dock_seq, fuel, fuel_per_km, max_weight,
			max_containers, max_heavy, max_refrigerated, max_liquid, consumption)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, sh := range reg.Ships() {
		lim := sh.Limits()
		if _, err := tx.ExecContext(ctx, insertShip,
			run.ID, sh.ID(), sh.Port().ID(), dockSeq[sh.ID()], sh.Fuel(), sh.FuelPerKm(), sh.MaxWeight(),
			lim.MaxAll, lim.MaxHeavy, lim.MaxRefrigerated, lim.MaxLiquid, sh.Consumption()); err != nil {
			return fmt.Errorf("store: save ship %s: %w", sh.ID(), err)
		}
		for _, ct := range sh.Containers() {
			if err := insertContainer(ctx, tx, run.ID, ct, "", sh.ID()); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit run %s: %w", run.ID, err)
	}
	return nil
}

func insertContainer(ctx context.Context, tx *sql.Tx, runID string, c cargo.Container, portID, shipID string) error {
	const q = `INSERT INTO containers (run_id, container_id, weight, category, port_id, ship_id) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, runID, c.ID, c.Weight, c.Category.String(), portID, shipID); err != nil {
		return fmt.Errorf("store: save container %s: %w", c.ID, err)
	}
	return nil
}

// Runs returns every stored run, newest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, scenario, distance, applied, rejected, created_at FROM runs ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			ts string
		)
		if err := rows.Scan(&r.ID, &r.Scenario, &r.Distance, &r.Applied, &r.Rejected, &ts); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if r.CreatedAt, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("store: run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}
	return runs, nil
}

// parseTimestamp accepts both the RFC 3339 text modernc.org/sqlite produces
// for CURRENT_TIMESTAMP and the space-separated form of canonical SQLite.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// LoadPort rebuilds the snapshot of one port as it was at the end of a run.
func (s *SQLiteStore) LoadPort(ctx context.Context, runID, portID string) (port.Snapshot, error) {
	snap := port.Snapshot{ID: portID}
	err := s.db.QueryRowContext(ctx,
		"SELECT latitude, longitude FROM ports WHERE run_id = ? AND port_id = ?", runID, portID).
		Scan(&snap.Latitude, &snap.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return port.Snapshot{}, fmt.Errorf("run %s port %s: %w", runID, portID, ErrNotFound)
	}
	if err != nil {
		return port.Snapshot{}, fmt.Errorf("store: load port %s: %w", portID, err)
	}

	if snap.Containers, err = s.containers(ctx, runID, "port_id", portID); err != nil {
		return port.Snapshot{}, err
	}
	if snap.Ships, err = s.strings(ctx,
		"SELECT ship_id FROM ships WHERE run_id = ? AND port_id = ? ORDER BY dock_seq", runID, portID); err != nil {
		return port.Snapshot{}, err
	}
	if snap.History, err = s.strings(ctx,
		"SELECT ship_id FROM departures WHERE run_id = ? AND port_id = ? ORDER BY seq", runID, portID); err != nil {
		return port.Snapshot{}, err
	}
	return snap, nil
}

// Ships returns the end state of every ship of a run, sorted by ID.
func (s *SQLiteStore) Ships(ctx context.Context, runID string) ([]ShipState, error) {
	const q = `
		SELECT ship_id, port_id, fuel, fuel_per_km, max_weight,
			max_containers, max_heavy, max_refrigerated, max_liquid, consumption
		FROM ships WHERE run_id = ?`
	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list ships: %w", err)
	}
	var ships []ShipState
	for rows.Next() {
		var st ShipState
		if err := rows.Scan(&st.ID, &st.PortID, &st.Fuel, &st.FuelPerKm, &st.MaxWeight,
			&st.Limits.MaxAll, &st.Limits.MaxHeavy, &st.Limits.MaxRefrigerated, &st.Limits.MaxLiquid,
			&st.Consumption); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan ship: %w", err)
		}
		ships = append(ships, st)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("store: iterate ships: %w", err)
	}
	rows.Close()

	// Containers are fetched after the ship cursor is closed: with a single
	// connection a nested query would block.
	for i := range ships {
		if ships[i].Containers, err = s.containers(ctx, runID, "ship_id", ships[i].ID); err != nil {
			return nil, err
		}
	}
	slices.SortFunc(ships, func(a, b ShipState) int { return cargo.CompareID(a.ID, b.ID) })
	return ships, nil
}

// containers reads the containers held by a port or a ship. column is a
// fixed identifier chosen by the caller, never user input.
func (s *SQLiteStore) containers(ctx context.Context, runID, column, owner string) ([]cargo.Container, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT container_id, weight, category FROM containers WHERE run_id = ? AND "+column+" = ?", runID, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list containers of %s: %w", owner, err)
	}
	defer rows.Close()

	var out []cargo.Container
	for rows.Next() {
		var (
			c   cargo.Container
			cat string
		)
		if err := rows.Scan(&c.ID, &c.Weight, &cat); err != nil {
			return nil, fmt.Errorf("store: scan container: %w", err)
		}
		if c.Category, err = cargo.ParseCategory(cat); err != nil {
			return nil, fmt.Errorf("store: container %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate containers: %w", err)
	}
	cargo.SortByID(out)
	return out, nil
}

func (s *SQLiteStore) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate: %w", err)
	}
	return out, nil
}
