package storage

import (
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func openTestDB(t *testing.T) (*SQLiteDB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realm.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	testutil.AssertErrorContains(t, err, "sqlite path is required")
}

func TestSQLiteStore_SaveReloadDelete(t *testing.T) {
	db, path := openTestDB(t)

	chars, err := NewSQLiteStore[*mockStoreSpec](db, "characters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	guilds, err := NewSQLiteStore[*mockStoreSpec](db, "guilds")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := chars.Save("char-1", &mockStoreSpec{Name: "Ayla", Value: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := chars.Save("char-1", &mockStoreSpec{Name: "Ayla", Value: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := guilds.Save("1", &mockStoreSpec{Name: "Falcons"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = db.Close()

	db2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })

	reloaded, err := NewSQLiteStore[*mockStoreSpec](db2, "characters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "kinds are separate", len(reloaded.GetAll()), 1)
	testutil.AssertEqual(t, "value", reloaded.Get("char-1").Value, 4)

	if err := reloaded.Delete("char-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Get("char-1") != nil {
		t.Errorf("expected record to be deleted")
	}
}

func TestSQLiteStore_SaveRejectsInvalid(t *testing.T) {
	db, _ := openTestDB(t)
	store, err := NewSQLiteStore[*mockStoreSpec](db, "characters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.Save("neg", &mockStoreSpec{Value: -1})
	testutil.AssertErrorContains(t, err, "value must not be negative")
}
