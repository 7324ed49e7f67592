package report

import (
	"context"
	"database/sql"
	"math"

	"github.com/uyouii/coretemps/model"
	"github.com/uyouii/coretemps/utils"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS segments (
	core      INTEGER NOT NULL,
	idx       INTEGER NOT NULL,
	x_lo      REAL NOT NULL,
	x_hi      REAL NOT NULL,
	slope     REAL NOT NULL,
	intercept REAL NOT NULL,
	PRIMARY KEY (core, idx)
);
CREATE TABLE IF NOT EXISTS coverage (
	core INTEGER PRIMARY KEY,
	x_lo REAL NOT NULL,
	x_hi REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS fits (
	core      INTEGER PRIMARY KEY,
	intercept REAL NOT NULL,
	slope     REAL NOT NULL,
	n         INTEGER NOT NULL,
	rss       REAL NOT NULL,
	r_squared REAL
);
CREATE TABLE IF NOT EXISTS failures (
	core  INTEGER PRIMARY KEY,
	error TEXT NOT NULL
);`

// SQLiteWriter stores segments and global fits in a sqlite database.
// Writing the same cores again replaces their previous rows.
type SQLiteWriter struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteWriter{db: db}, nil
}

func (s *SQLiteWriter) Write(ctx context.Context, results []model.CoreResult) error {
	logger := utils.GetLogger(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := writeResults(ctx, tx, results); err != nil {
		tx.Rollback()
		logger.Error("write sqlite report failed", zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Info("sqlite report written", zap.Int("cores", len(results)))
	return nil
}

func writeResults(ctx context.Context, tx *sql.Tx, results []model.CoreResult) error {
	for _, result := range results {
		for _, table := range []string{"segments", "coverage", "fits", "failures"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE core = ?", result.Core); err != nil {
				return err
			}
		}

		if result.Failed() {
			if _, err := tx.ExecContext(ctx, "INSERT INTO failures (core, error) VALUES (?, ?)",
				result.Core, result.Err.Error()); err != nil {
				return err
			}
			continue
		}

		for i, segment := range result.Segments {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO segments (core, idx, x_lo, x_hi, slope, intercept) VALUES (?, ?, ?, ?, ?, ?)",
				result.Core, i, segment.XLo, segment.XHi, segment.Slope, segment.Intercept); err != nil {
				return err
			}
		}

		if covers := result.Range; covers != nil {
			if _, err := tx.ExecContext(ctx, "INSERT INTO coverage (core, x_lo, x_hi) VALUES (?, ?, ?)",
				result.Core, covers.Lo, covers.Hi); err != nil {
				return err
			}
		}

		if fit := result.Fit; fit != nil {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO fits (core, intercept, slope, n, rss, r_squared) VALUES (?, ?, ?, ?, ?, ?)",
				result.Core, fit.Intercept, fit.Slope, fit.N, fit.RSS, fit.RSquared); err != nil {
				return err
			}
		}
	}
	return nil
}

// Segments returns the stored segments of a core in ascending order.
func (s *SQLiteWriter) Segments(ctx context.Context, core int) ([]model.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT x_lo, x_hi, slope, intercept FROM segments WHERE core = ? ORDER BY idx ASC", core)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var segment model.Segment
		if err := rows.Scan(&segment.XLo, &segment.XHi, &segment.Slope, &segment.Intercept); err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	return segments, rows.Err()
}

// Coverage returns the stored covered range of a core, closed at Hi, nil if there is none.
func (s *SQLiteWriter) Coverage(ctx context.Context, core int) (*model.Range, error) {
	covers := &model.Range{}
	err := s.db.QueryRowContext(ctx, "SELECT x_lo, x_hi FROM coverage WHERE core = ?", core).
		Scan(&covers.Lo, &covers.Hi)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return covers, nil
}

// GlobalFit returns the stored fit of a core, nil if there is none.
func (s *SQLiteWriter) GlobalFit(ctx context.Context, core int) (*model.GlobalFit, error) {
	fit := &model.GlobalFit{}
	var rSquared sql.NullFloat64 // sqlite stores NaN as NULL
	err := s.db.QueryRowContext(ctx,
		"SELECT intercept, slope, n, rss, r_squared FROM fits WHERE core = ?", core).
		Scan(&fit.Intercept, &fit.Slope, &fit.N, &fit.RSS, &rSquared)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fit.RSquared = math.NaN()
	if rSquared.Valid {
		fit.RSquared = rSquared.Float64
	}
	return fit, nil
}

func (s *SQLiteWriter) Close() error {
	return s.db.Close()
}
