// Package history keeps battery readings in a SQLite database.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/powersource"
)

// Reading is one sample taken by the cycling loop.
type Reading struct {
	Timestamp       time.Time               `json:"timestamp"`
	Battery         powersource.BatteryInfo `json:"battery"`
	Percentage      *float64                `json:"percentage,omitempty"`
	Health          *float64                `json:"health,omitempty"`
	ChargingEnabled bool                    `json:"charging_enabled"`
}

// NewReading builds a Reading for info, deriving percentage and health.
func NewReading(t time.Time, info powersource.BatteryInfo, chargingEnabled bool) Reading {
	r := Reading{
		Timestamp:       t,
		Battery:         info,
		ChargingEnabled: chargingEnabled,
	}
	if pct, ok := info.Percentage(); ok {
		r.Percentage = &pct
	}
	if health, ok := info.Health(); ok {
		r.Health = &health
	}
	return r
}

// Store is a SQLite-backed reading log.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, pkgerrors.New("history database path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create directory for %s", path)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open %s", path)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrapf(err, "failed to prepare schema in %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"path":          path,
		"schemaVersion": SchemaVersion,
	}).Debug("history store opened")

	return &Store{db: db, path: path}, nil
}

func migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_versions'`).Scan(&current); err != nil {
		return err
	}
	if current > 0 {
		if err := db.QueryRow(selectSchemaVersionSQL).Scan(&current); err != nil {
			return err
		}
		if current > SchemaVersion {
			return pkgerrors.Errorf("database schema version %d is newer than supported %d", current, SchemaVersion)
		}
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		return err
	}
	_, err := db.Exec(insertSchemaVersionSQL, SchemaVersion, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Record stores r.
func (s *Store) Record(r Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := r.Battery
	_, err := s.db.Exec(insertReadingSQL,
		r.Timestamp.UnixMilli(),
		b.CurrentCapacity,
		b.MaxCapacity,
		b.DesignCapacity,
		b.CycleCount,
		b.IsCharging,
		b.IsPluggedIn,
		r.Percentage,
		r.Health,
		r.ChargingEnabled,
	)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to insert reading")
	}
	return nil
}

// Recent returns up to limit readings, newest first.
func (s *Store) Recent(limit int) ([]Reading, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(selectRecentSQL, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query readings")
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var (
			ts                             int64
			current, maxCap, design, cycle sql.NullInt64
			charging, pluggedIn            sql.NullBool
			pct, health                    sql.NullFloat64
			enabled                        bool
		)
		if err := rows.Scan(&ts, &current, &maxCap, &design, &cycle, &charging, &pluggedIn, &pct, &health, &enabled); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to scan reading")
		}

		out = append(out, Reading{
			Timestamp: time.UnixMilli(ts),
			Battery: powersource.BatteryInfo{
				CurrentCapacity: nullInt(current),
				MaxCapacity:     nullInt(maxCap),
				DesignCapacity:  nullInt(design),
				CycleCount:      nullInt(cycle),
				IsCharging:      nullBool(charging),
				IsPluggedIn:     nullBool(pluggedIn),
			},
			Percentage:      nullFloat(pct),
			Health:          nullFloat(health),
			ChargingEnabled: enabled,
		})
	}

	return out, pkgerrors.Wrap(rows.Err(), "failed to iterate readings")
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		logrus.WithError(err).Warn("failed to checkpoint history WAL")
	}
	return s.db.Close()
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
