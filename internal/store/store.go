// Package store reads and writes precinct anomaly records in PostgreSQL, for deployments that
// keep the pipeline output in a database instead of a static file.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/logger"
)

// SourceName tags datasets loaded from the database.
const SourceName = "postgres"

// Store holds the connection pool.
//
// Constraint: the caller owns the *sql.DB and closes it; the schema must already exist
// (migrate.EnsureSchema).
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

const selectRecords = `SELECT id, name, municipality, province, region, lat, lng, anomaly_score, priority,
    precinct_number, turnout, expected, residual, spatial_dev_z, gi_star_z, overvote_rate, undervote_rate,
    registered_voters, actual_voters, valid_votes, over_votes, under_votes
    FROM precinct_anomalies ORDER BY position, id`

// LoadRecords returns every record in import order.
func (s *Store) LoadRecords(ctx context.Context) ([]anomaly.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()
	var out []anomaly.Record
	for rows.Next() {
		var (
			r           anomaly.Record
			prio        string
			over, under sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Municipality, &r.Province, &r.Region, &r.Lat, &r.Lng,
			&r.AnomalyScore, &prio, &r.PrecinctNumber, &r.Turnout, &r.Expected, &r.Residual,
			&r.SpatialDevZScore, &r.GiStarZScore, &over, &under,
			&r.RegisteredVoters, &r.ActualVoters, &r.ValidVotes, &r.OverVotes, &r.UnderVotes); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Priority = anomaly.Priority(prio)
		r.OvervoteRate = nullable(over)
		r.UndervoteRate = nullable(under)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	logger.L().Debug("db_records_loaded", "count", len(out))
	return out, nil
}

// LoadDataset wraps LoadRecords into a Dataset.
func (s *Store) LoadDataset(ctx context.Context) (*anomaly.Dataset, error) {
	recs, err := s.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}
	return anomaly.NewDataset(recs, SourceName), nil
}

const upsertRecord = `INSERT INTO precinct_anomalies(id, position, name, municipality, province, region, lat, lng,
    anomaly_score, priority, precinct_number, turnout, expected, residual, spatial_dev_z, gi_star_z,
    overvote_rate, undervote_rate, registered_voters, actual_voters, valid_votes, over_votes, under_votes)
    VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
    ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, name=EXCLUDED.name,
    municipality=EXCLUDED.municipality, province=EXCLUDED.province, region=EXCLUDED.region,
    lat=EXCLUDED.lat, lng=EXCLUDED.lng, anomaly_score=EXCLUDED.anomaly_score, priority=EXCLUDED.priority,
    precinct_number=EXCLUDED.precinct_number, turnout=EXCLUDED.turnout, expected=EXCLUDED.expected,
    residual=EXCLUDED.residual, spatial_dev_z=EXCLUDED.spatial_dev_z, gi_star_z=EXCLUDED.gi_star_z,
    overvote_rate=EXCLUDED.overvote_rate, undervote_rate=EXCLUDED.undervote_rate,
    registered_voters=EXCLUDED.registered_voters, actual_voters=EXCLUDED.actual_voters,
    valid_votes=EXCLUDED.valid_votes, over_votes=EXCLUDED.over_votes, under_votes=EXCLUDED.under_votes,
    updated_at=now()`

// UpsertRecords writes records in one transaction, keeping their order in the position
// column. With prune set, rows whose id is not in records are deleted.
func (s *Store) UpsertRecords(ctx context.Context, records []anomaly.Record, prune bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRecord)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(records))
	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, i, r.Name, r.Municipality, r.Province, r.Region, r.Lat, r.Lng,
			r.AnomalyScore, string(r.Priority), r.PrecinctNumber, r.Turnout, r.Expected, r.Residual,
			r.SpatialDevZScore, r.GiStarZScore, nullFloat(r.OvervoteRate), nullFloat(r.UndervoteRate),
			r.RegisteredVoters, r.ActualVoters, r.ValidVotes, r.OverVotes, r.UnderVotes); err != nil {
			return 0, fmt.Errorf("upsert record %d: %w", r.ID, err)
		}
		ids = append(ids, int64(r.ID))
	}
	if prune {
		res, err := tx.ExecContext(ctx, `DELETE FROM precinct_anomalies WHERE NOT (id = ANY($1))`, pq.Array(ids))
		if err != nil {
			return 0, fmt.Errorf("prune records: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			logger.L().Info("db_records_pruned", "count", n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	logger.L().Debug("db_records_upserted", "count", len(records), "prune", prune)
	return len(records), nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
