package storage

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v4/stdlib" // database/sql driver
	"go.uber.org/zap"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS harvest_runs (
	id         UUID PRIMARY KEY,
	region_key TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS harvest_records (
	run_id        UUID NOT NULL REFERENCES harvest_runs(id),
	position      INTEGER NOT NULL,
	business_name TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone         TEXT NOT NULL,
	website       TEXT NOT NULL,
	address       TEXT NOT NULL,
	category      TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// History keeps every run's rows in Postgres, one run header plus its
// records, so results stay queryable after the spreadsheet files are gone.
type History struct {
	db  *sql.DB
	log *zap.Logger
}

// Connect opens the database, waiting for it to come up the way container
// stacks need, and makes sure the tables exist.
func Connect(ctx context.Context, url string, log *zap.Logger) (*History, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("pgx", url)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				break
			}
			db.Close()
			db = nil
		}
		log.Warn("waiting for database", zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if db == nil {
		return nil, fmt.Errorf("database unreachable after retries: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &History{db: db, log: log}, nil
}

func (h *History) Close() error { return h.db.Close() }

// Export records one region's rows under a fresh run id. A single bad row
// is logged and skipped rather than sinking the whole run.
func (h *History) Export(regionKey string, rows [][]string) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runID := uuid.New()
	if _, err := tx.Exec(
		`INSERT INTO harvest_runs (id, region_key, row_count) VALUES ($1, $2, $3)`,
		runID, regionKey, len(rows),
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO harvest_records (run_id, position, business_name, email, phone, website, address, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, position) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) < 6 {
			continue
		}
		if _, err := stmt.Exec(runID, i, row[0], row[1], row[2], row[3], row[4], row[5]); err != nil {
			h.log.Warn("row not recorded",
				zap.String("region", regionKey),
				zap.Int("position", i),
				zap.Error(err))
		}
	}

	return tx.Commit()
}
