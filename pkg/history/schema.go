package history

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS readings (
	       id               INTEGER PRIMARY KEY AUTOINCREMENT,
	       timestamp        INTEGER NOT NULL,
	       current_capacity INTEGER,
	       max_capacity     INTEGER,
	       design_capacity  INTEGER,
	       cycle_count      INTEGER,
	       is_charging      INTEGER CHECK (is_charging IN (0, 1)),
	       is_plugged_in    INTEGER CHECK (is_plugged_in IN (0, 1)),
	       percentage       REAL,
	       health           REAL,
	       charging_enabled INTEGER NOT NULL CHECK (charging_enabled IN (0, 1))
	   );
	   CREATE INDEX IF NOT EXISTS readings_timestamp ON readings (timestamp);`

	insertSchemaVersionSQL = `INSERT OR IGNORE INTO schema_versions (version, applied_at) VALUES (?, ?)`

	selectSchemaVersionSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_versions`

	insertReadingSQL = `
	   INSERT INTO readings (
	       timestamp, current_capacity, max_capacity, design_capacity, cycle_count,
	       is_charging, is_plugged_in, percentage, health, charging_enabled
	   ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRecentSQL = `
	   SELECT timestamp, current_capacity, max_capacity, design_capacity, cycle_count,
	          is_charging, is_plugged_in, percentage, health, charging_enabled
	   FROM readings
	   ORDER BY timestamp DESC, id DESC
	   LIMIT ?`
)
