package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sonarsarthak/EDUManager/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// schema holds the timetable tables. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS timetable_runs (
		id                TEXT PRIMARY KEY,
		source_file       TEXT NOT NULL,
		seed              BIGINT NOT NULL,
		rows_read         INTEGER NOT NULL,
		rows_dropped      INTEGER NOT NULL,
		total_courses     INTEGER NOT NULL,
		complete_courses  INTEGER NOT NULL,
		sessions_required INTEGER NOT NULL,
		sessions_placed   INTEGER NOT NULL,
		analytics         JSONB NOT NULL,
		created_by        TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS timetable_sessions (
		id           TEXT PRIMARY KEY,
		run_id       TEXT NOT NULL REFERENCES timetable_runs(id) ON DELETE CASCADE,
		branch       TEXT NOT NULL,
		semester     TEXT NOT NULL,
		day          TEXT NOT NULL,
		day_index    INTEGER NOT NULL,
		period       TEXT NOT NULL,
		period_index INTEGER NOT NULL,
		course_code  TEXT NOT NULL,
		course_name  TEXT NOT NULL,
		session_type TEXT NOT NULL,
		main_faculty TEXT NOT NULL,
		co_faculty   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_sessions_class ON timetable_sessions (run_id, branch, semester)`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_sessions_main_faculty ON timetable_sessions (run_id, main_faculty)`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_sessions_co_faculty ON timetable_sessions (run_id, co_faculty)`,
}

// Migrate creates the timetable tables when missing.
func Migrate(ctx context.Context, db sqlx.ExecerContext) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate timetable schema: %w", err)
		}
	}
	return nil
}
