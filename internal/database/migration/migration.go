package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email      TEXT        NOT NULL UNIQUE,
  name       TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_access_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS access_tokens (
  token_hash TEXT        PRIMARY KEY,
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_companies",
		SQL: `CREATE TABLE IF NOT EXISTS companies (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  siret         CHAR(14)    NOT NULL UNIQUE,
  name          TEXT        NOT NULL,
  address       TEXT        NOT NULL DEFAULT '',
  contact       TEXT        NOT NULL DEFAULT '',
  phone         TEXT        NOT NULL DEFAULT '',
  mail          TEXT        NOT NULL DEFAULT '',
  company_types JSONB       NOT NULL DEFAULT '[]',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_company_associations",
		SQL: `CREATE TABLE IF NOT EXISTS company_associations (
  user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  company_id UUID NOT NULL REFERENCES companies (id) ON DELETE CASCADE,
  role       TEXT NOT NULL CHECK (role IN ('ADMIN', 'MEMBER')),
  PRIMARY KEY (user_id, company_id)
);`,
	},
	{
		Name: "create_table_bsds",
		SQL: `CREATE TABLE IF NOT EXISTS bsds (
  id                TEXT        PRIMARY KEY,
  kind              TEXT        NOT NULL,
  status            TEXT        NOT NULL,
  is_draft          BOOLEAN     NOT NULL DEFAULT false,
  is_deleted        BOOLEAN     NOT NULL DEFAULT false,
  emitter_siret     TEXT        NOT NULL DEFAULT '',
  transporter_siret TEXT        NOT NULL DEFAULT '',
  destination_siret TEXT        NOT NULL DEFAULT '',
  grouped_in        TEXT        REFERENCES bsds (id),
  payload           JSONB       NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_bsds_kind_updated_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bsds_kind_updated_at ON bsds (kind, updated_at DESC, id DESC);`,
	},
	{
		Name: "create_index_bsds_emitter_siret",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bsds_emitter_siret ON bsds (emitter_siret);`,
	},
	{
		Name: "create_index_bsds_transporter_siret",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bsds_transporter_siret ON bsds (transporter_siret);`,
	},
	{
		Name: "create_index_bsds_destination_siret",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bsds_destination_siret ON bsds (destination_siret);`,
	},
	{
		Name: "create_index_bsds_grouped_in",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bsds_grouped_in ON bsds (grouped_in);`,
	},
	{
		Name: "create_table_bsd_status_logs",
		SQL: `CREATE TABLE IF NOT EXISTS bsd_status_logs (
  id        UUID        PRIMARY KEY,
  bsd_id    TEXT        NOT NULL REFERENCES bsds (id),
  status    TEXT        NOT NULL,
  stage     TEXT        NOT NULL,
  user_id   UUID        REFERENCES users (id),
  author    TEXT        NOT NULL DEFAULT '',
  logged_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// sentinel is the table whose presence means the schema is already in place.
const sentinel = "public.bsds"

// EnsureMigrated checks if the 'bsds' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinel).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
