package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

type mockStoreSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *mockStoreSpec) Validate() error {
	if s.Value < 0 {
		return fmt.Errorf("value must not be negative")
	}
	return nil
}

func writeAsset(t *testing.T, dir, file, id string, spec *mockStoreSpec) {
	t.Helper()
	data, err := json.Marshal(Asset[*mockStoreSpec]{Version: 1, Identifier: Identifier(id), Spec: spec})
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "characters")

	store, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected directory to exist: %v", err)
	}
	testutil.AssertEqual(t, "is dir", info.IsDir(), true)
	testutil.AssertEqual(t, "records", len(store.GetAll()), 0)
}

func TestNewFileStore_Load(t *testing.T) {
	tests := map[string]struct {
		setup    func(t *testing.T, dir string)
		expCount int
		expErr   string
	}{
		"loads assets and ignores other files": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, dir, "a.json", "char-a", &mockStoreSpec{Name: "A", Value: 1})
				writeAsset(t, dir, "b.json", "char-b", &mockStoreSpec{Name: "B", Value: 2})
				_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644)
			},
			expCount: 2,
		},
		"invalid json": {
			setup: func(t *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{invalid`), 0644)
			},
			expErr: "unmarshalling asset",
		},
		"invalid spec": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, dir, "neg.json", "neg", &mockStoreSpec{Value: -1})
			},
			expErr: "value must not be negative",
		},
		"duplicate key": {
			setup: func(t *testing.T, dir string) {
				sub := filepath.Join(dir, "sub")
				_ = os.Mkdir(sub, 0755)
				writeAsset(t, dir, "one.json", "dup", &mockStoreSpec{})
				writeAsset(t, sub, "two.json", "dup", &mockStoreSpec{})
			},
			expErr: "duplicate key detected: dup",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			store, err := NewFileStore[*mockStoreSpec](dir)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "record count", len(store.GetAll()), tt.expCount)
		})
	}
}

func TestFileStore_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Save("char-1", &mockStoreSpec{Name: "Initial", Value: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save("char-1", &mockStoreSpec{Name: "Updated", Value: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	got := reloaded.Get("char-1")
	if got == nil {
		t.Fatal("expected record after reload")
	}
	testutil.AssertEqual(t, "name", got.Name, "Updated")
	testutil.AssertEqual(t, "value", got.Value, 2)

	if _, err := os.Stat(filepath.Join(dir, "char-1.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file should not remain after save")
	}
}

func TestFileStore_SaveRejectsInvalid(t *testing.T) {
	store, err := NewFileStore[*mockStoreSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.Save("bad id", &mockStoreSpec{})
	testutil.AssertErrorContains(t, err, "id must be alphanumeric")

	err = store.Save("neg", &mockStoreSpec{Value: -3})
	testutil.AssertErrorContains(t, err, "value must not be negative")

	testutil.AssertEqual(t, "records", len(store.GetAll()), 0)
}

func TestFileStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = store.Save("guild-1", &mockStoreSpec{Name: "Falcons"})

	if err := store.Delete("guild-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete("guild-1"); err != nil {
		t.Fatalf("deleting twice should not error: %v", err)
	}

	if store.Get("guild-1") != nil {
		t.Errorf("expected record to be removed from cache")
	}
	if _, err := os.Stat(filepath.Join(dir, "guild-1.json")); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed")
	}
}

func TestFileStore_GetAllReturnsCopy(t *testing.T) {
	store, err := NewFileStore[*mockStoreSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = store.Save("a", &mockStoreSpec{})

	all := store.GetAll()
	delete(all, "a")

	testutil.AssertEqual(t, "records", len(store.GetAll()), 1)
}
