// Package postgres provides the durable repository adapters backed by
// PostgreSQL via lib/pq.
package postgres

// Migrations returns the schema statements, one statement per string.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS principals (
			id         TEXT PRIMARY KEY,
			key_id     TEXT NOT NULL UNIQUE,
			key_hash   TEXT NOT NULL,
			role       TEXT NOT NULL,
			credits    BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0),
			created_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS rules (
			id         TEXT PRIMARY KEY,
			pattern    TEXT NOT NULL,
			action     TEXT NOT NULL,
			position   BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rules_position ON rules(position)`,

		`CREATE TABLE IF NOT EXISTS submissions (
			id               TEXT PRIMARY KEY,
			principal_id     TEXT NOT NULL REFERENCES principals(id),
			command_text     TEXT NOT NULL,
			status           TEXT NOT NULL,
			matched_rule_id  TEXT,
			credits_deducted BIGINT NOT NULL DEFAULT 0,
			rejection_reason TEXT,
			created_at       TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_principal ON submissions(principal_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS audit_entries (
			id           TEXT PRIMARY KEY,
			principal_id TEXT NOT NULL,
			action       TEXT NOT NULL,
			details      TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_entries(created_at DESC)`,
	}
}
