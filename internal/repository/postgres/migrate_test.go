package postgres

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func migrationDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations(t *testing.T) {
	db := migrationDB(t)
	migrations := fstest.MapFS{
		"0002_notes.sql": &fstest.MapFile{
			Data: []byte(`ALTER TABLE widgets ADD COLUMN note VARCHAR(255)`),
		},
		"0001_widgets.sql": &fstest.MapFile{
			Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name VARCHAR(255))`),
		},
		"README.md": &fstest.MapFile{Data: []byte("not a migration")},
	}

	// Files apply in lexical order; 0002 depends on 0001
	if err := RunMigrations(db, migrations); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	if _, err := db.Exec(`INSERT INTO widgets (name, note) VALUES ('w', 'n')`); err != nil {
		t.Fatalf("migrated schema unusable: %v", err)
	}

	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("schema_migrations rows = %d, want 2", applied)
	}

	// Re-running applies nothing new
	if err := RunMigrations(db, migrations); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("schema_migrations rows after rerun = %d, want 2", applied)
	}
}

func TestRunMigrationsFailureRollsBack(t *testing.T) {
	db := migrationDB(t)
	migrations := fstest.MapFS{
		"0001_bad.sql": &fstest.MapFile{Data: []byte(`CREATE BROKEN SYNTAX`)},
	}

	if err := RunMigrations(db, migrations); err == nil {
		t.Fatal("RunMigrations() with invalid SQL succeeded")
	}

	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 0 {
		t.Errorf("schema_migrations rows = %d, want 0 after failed migration", applied)
	}
}
