package command

import (
	"path/filepath"
	"testing"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-testutil"
)

func validConfig() *Config {
	return &Config{
		TickInterval: "100ms",
		Storage:      StorageConfig{Backend: BackendMemory},
		Session:      SessionConfig{StartMap: "town"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(c *Config)
		expErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"bad tick interval": {
			mutate: func(c *Config) { c.TickInterval = "soon" },
			expErr: "parsing tick_interval",
		},
		"tick too short": {
			mutate: func(c *Config) { c.TickInterval = "1ms" },
			expErr: "at least 10ms",
		},
		"missing start map": {
			mutate: func(c *Config) { c.Session.StartMap = "" },
			expErr: "start_map is required",
		},
		"map entry without name": {
			mutate: func(c *Config) { c.Session.MapEntries = []game.EnterGameLocation{{}} },
			expErr: "map entry 0",
		},
		"persist interval too short": {
			mutate: func(c *Config) { c.Session.PersistInterval = "10ms" },
			expErr: "persist_interval must be at least",
		},
		"unknown backend": {
			mutate: func(c *Config) { c.Storage.Backend = "tape" },
			expErr: "unknown backend",
		},
		"sqlite without path": {
			mutate: func(c *Config) { c.Storage.Backend = BackendSQLite },
			expErr: "path is required",
		},
		"bad nats timeout": {
			mutate: func(c *Config) { c.Nats.RequestTimeout = "later" },
			expErr: "parsing request_timeout",
		},
		"missing rules file": {
			mutate: func(c *Config) { c.Rules.Path = filepath.Join(t.TempDir(), "nope.json") },
			expErr: "rules: invalid path",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expErr == "" {
				testutil.AssertEqual(t, "error", err, nil)
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REALM_START_MAP", "forest")
	t.Setenv("REALM_NATS_PORT", "4333")
	t.Setenv("REALM_STORAGE_BACKEND", "sqlite")

	c := validConfig()
	if err := c.applyEnv(); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	testutil.AssertEqual(t, "start map", c.Session.StartMap, "forest")
	testutil.AssertEqual(t, "nats port", c.Nats.Port, 4333)
	testutil.AssertEqual(t, "backend", c.Storage.Backend, BackendSQLite)
	testutil.AssertEqual(t, "tick untouched", c.TickInterval, "100ms")
}

func TestStorageConfig_BuildStores(t *testing.T) {
	tests := map[string]struct {
		backend StorageBackend
		path    func(dir string) string
	}{
		"memory": {backend: BackendMemory, path: func(string) string { return "" }},
		"file":   {backend: BackendFile, path: func(dir string) string { return dir }},
		"sqlite": {backend: BackendSQLite, path: func(dir string) string { return filepath.Join(dir, "realm.db") }},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := &StorageConfig{Backend: tt.backend, Path: tt.path(t.TempDir())}
			stores, err := c.BuildStores()
			if err != nil {
				t.Fatalf("BuildStores: %v", err)
			}

			rec := &game.CharacterRecord{Id: "xavier", Name: "xavier", Gold: 10}
			if err := stores.Characters.Save(rec.Id, rec); err != nil {
				t.Fatalf("save: %v", err)
			}
			testutil.AssertEqual(t, "reloaded gold", stores.Characters.Get("xavier").Gold, int64(10))
		})
	}
}

func TestRulesConfig_BuildRules(t *testing.T) {
	c := &RulesConfig{}
	r, err := c.BuildRules()
	if err != nil {
		t.Fatalf("BuildRules: %v", err)
	}
	testutil.AssertEqual(t, "default guild roles", len(r.GuildRoles), 3)

	c.Texts = map[game.UIMessage]string{game.UIPartyInvitationAccepted: "{{ .Name }} is in."}
	catalog, err := c.BuildCatalog()
	if err != nil {
		t.Fatalf("BuildCatalog: %v", err)
	}
	testutil.AssertEqual(t, "override", catalog.Render(game.UIPartyInvitationAccepted, struct{ Name string }{"zed"}), "zed is in.")
}
