package command

import (
	"fmt"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/containers"
	"github.com/pixil98/go-realm/internal/economy"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/social"
	"github.com/pixil98/go-realm/internal/storage"
)

type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
	BackendMemory StorageBackend = "memory"
)

type StorageConfig struct {
	Backend StorageBackend `json:"backend" env:"REALM_STORAGE_BACKEND"`
	// Path is a directory for the file backend and a database file for sqlite.
	Path string `json:"path" env:"REALM_STORAGE_PATH"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case BackendFile, BackendSQLite:
		if c.Path == "" {
			el.Add(fmt.Errorf("storage: path is required for the %s backend", c.Backend))
		}
	case BackendMemory, "":
	default:
		el.Add(fmt.Errorf("storage: unknown backend %q", c.Backend))
	}

	return el.Err()
}

// Stores holds one Storer per persisted record kind.
type Stores struct {
	Characters storage.Storer[*game.CharacterRecord]
	Buffs      storage.Storer[*game.SummonBuffs]
	Locations  storage.Storer[*game.EnterGameLocation]
	Worlds     storage.Storer[*game.WorldSnapshot]
	Storages   storage.Storer[*containers.StorageRecord]
	Guilds     storage.Storer[*social.Group]
	Accounts   storage.Storer[*economy.Account]
}

func (c *StorageConfig) BuildStores() (*Stores, error) {
	var db *storage.SQLiteDB
	if c.Backend == BackendSQLite {
		var err error
		db, err = storage.OpenSQLite(c.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
	}

	var err error
	s := &Stores{}
	if s.Characters, err = openStore[*game.CharacterRecord](c, db, "characters"); err != nil {
		return nil, err
	}
	if s.Buffs, err = openStore[*game.SummonBuffs](c, db, "summon-buffs"); err != nil {
		return nil, err
	}
	if s.Locations, err = openStore[*game.EnterGameLocation](c, db, "locations"); err != nil {
		return nil, err
	}
	if s.Worlds, err = openStore[*game.WorldSnapshot](c, db, "worlds"); err != nil {
		return nil, err
	}
	if s.Storages, err = openStore[*containers.StorageRecord](c, db, "storages"); err != nil {
		return nil, err
	}
	if s.Guilds, err = openStore[*social.Group](c, db, "guilds"); err != nil {
		return nil, err
	}
	if s.Accounts, err = openStore[*economy.Account](c, db, "accounts"); err != nil {
		return nil, err
	}
	return s, nil
}

func openStore[T storage.ValidatingSpec](c *StorageConfig, db *storage.SQLiteDB, kind string) (storage.Storer[T], error) {
	switch c.Backend {
	case BackendFile:
		s, err := storage.NewFileStore[T](filepath.Join(c.Path, kind))
		if err != nil {
			return nil, fmt.Errorf("creating %s store: %w", kind, err)
		}
		return s, nil
	case BackendSQLite:
		s, err := storage.NewSQLiteStore[T](db, kind)
		if err != nil {
			return nil, fmt.Errorf("creating %s store: %w", kind, err)
		}
		return s, nil
	default:
		return storage.NewMemoryStore[T](), nil
	}
}
