package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the toolkit schema
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id VARCHAR(128) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		id VARCHAR(255) PRIMARY KEY,
		tenant_id VARCHAR(128) NOT NULL,
		name VARCHAR(255) NOT NULL,
		platform VARCHAR(50) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS campaign_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id VARCHAR(128) NOT NULL,
		campaign_id VARCHAR(255) NOT NULL,
		platform VARCHAR(50) NOT NULL,
		date DATE NOT NULL,
		impressions REAL NOT NULL DEFAULT 0,
		clicks REAL NOT NULL DEFAULT 0,
		conversions REAL NOT NULL DEFAULT 0,
		spend REAL NOT NULL DEFAULT 0,
		revenue REAL NOT NULL DEFAULT 0,
		ctr REAL NOT NULL DEFAULT 0,
		cpc REAL NOT NULL DEFAULT 0,
		cvr REAL NOT NULL DEFAULT 0,
		roas REAL NOT NULL DEFAULT 0,
		source_tag VARCHAR(64)
	);

	CREATE TABLE IF NOT EXISTS alert_rules (
		id VARCHAR(255) PRIMARY KEY,
		tenant_id VARCHAR(128) NOT NULL,
		name VARCHAR(255) NOT NULL,
		condition TEXT NOT NULL,
		severity VARCHAR(20) NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS triggered_alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id VARCHAR(128) NOT NULL,
		rule_id VARCHAR(255) NOT NULL,
		campaign_id VARCHAR(255) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		reason TEXT NOT NULL,
		triggered_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alert_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id VARCHAR(128) NOT NULL,
		rule_id VARCHAR(255) NOT NULL,
		event VARCHAR(50) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS confirmation_tokens (
		token_id VARCHAR(64) PRIMARY KEY,
		tenant_id VARCHAR(128) NOT NULL,
		mode VARCHAR(20) NOT NULL,
		issued_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		token_hash VARCHAR(64) NOT NULL,
		consumed_at TIMESTAMP
	);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	return db
}
