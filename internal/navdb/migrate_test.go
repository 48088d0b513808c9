package navdb

import (
	"testing"
)

func TestMigrateUpAndVersion(t *testing.T) {
	ndb := newTestDB(t)

	if err := ndb.MigrateUp("migrations"); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	version, dirty, err := ndb.MigrateVersion("migrations")
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if dirty {
		t.Error("migration state is dirty after clean MigrateUp")
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	// Running up again is a no-op.
	if err := ndb.MigrateUp("migrations"); err != nil {
		t.Errorf("second MigrateUp failed: %v", err)
	}
}

func TestMigrateVersionBeforeAnyMigration(t *testing.T) {
	ndb := newTestDB(t)

	version, dirty, err := ndb.MigrateVersion("migrations")
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("version = %d dirty = %v, want 0 and clean", version, dirty)
	}
}

func TestMigrateDown(t *testing.T) {
	ndb := newTestDB(t)

	if err := ndb.MigrateUp("migrations"); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	if err := ndb.MigrateDown("migrations"); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	version, dirty, err := ndb.MigrateVersion("migrations")
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("version = %d dirty = %v after down, want 0 and clean", version, dirty)
	}
}
