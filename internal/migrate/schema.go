package migrate

import (
	"database/sql"

	"pagsusi/internal/logger"
)

// EnsureSchema creates the record table on first run. Statements use IF NOT EXISTS so they are
// safe against an existing database.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS precinct_anomalies (
            id INT PRIMARY KEY,
            position INT NOT NULL DEFAULT 0,
            name TEXT NOT NULL,
            municipality TEXT NOT NULL DEFAULT '',
            province TEXT NOT NULL DEFAULT '',
            region INT NOT NULL DEFAULT 0,
            lat DOUBLE PRECISION NOT NULL,
            lng DOUBLE PRECISION NOT NULL,
            anomaly_score DOUBLE PRECISION NOT NULL,
            priority TEXT NOT NULL,
            precinct_number INT NOT NULL DEFAULT 0,
            turnout DOUBLE PRECISION NOT NULL DEFAULT 0,
            expected DOUBLE PRECISION NOT NULL DEFAULT 0,
            residual DOUBLE PRECISION NOT NULL DEFAULT 0,
            spatial_dev_z DOUBLE PRECISION NOT NULL DEFAULT 0,
            gi_star_z DOUBLE PRECISION NOT NULL DEFAULT 0,
            overvote_rate DOUBLE PRECISION,
            undervote_rate DOUBLE PRECISION,
            registered_voters INT NOT NULL DEFAULT 0,
            actual_voters INT NOT NULL DEFAULT 0,
            valid_votes INT NOT NULL DEFAULT 0,
            over_votes INT NOT NULL DEFAULT 0,
            under_votes INT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_precinct_anomalies_position ON precinct_anomalies(position)`,
		`CREATE INDEX IF NOT EXISTS idx_precinct_anomalies_coord ON precinct_anomalies(lat, lng)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
