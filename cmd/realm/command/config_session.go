package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/session"
)

type SessionConfig struct {
	StartMap        string                   `json:"start_map" env:"REALM_START_MAP"`
	MapEntries      []game.EnterGameLocation `json:"map_entries"`
	PersistInterval string                   `json:"persist_interval" env:"REALM_PERSIST_INTERVAL"`
	// FirstJoinerPermission is granted to the first character to spawn.
	// Zero disables the policy.
	FirstJoinerPermission int `json:"first_joiner_permission" env:"REALM_FIRST_JOINER_PERMISSION"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartMap == "" {
		el.Add(fmt.Errorf("session: start_map is required"))
	}
	for i := range c.MapEntries {
		if err := c.MapEntries[i].Validate(); err != nil {
			el.Add(fmt.Errorf("session: map entry %d: %w", i, err))
		}
	}
	if c.PersistInterval != "" {
		d, err := time.ParseDuration(c.PersistInterval)
		if err != nil {
			el.Add(fmt.Errorf("session: parsing persist_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("session: persist_interval must be at least 1 second"))
		}
	}
	if c.FirstJoinerPermission < 0 {
		el.Add(fmt.Errorf("session: first_joiner_permission must not be negative"))
	}

	return el.Err()
}

func (c *SessionConfig) managerOpts(stores *Stores, kicker session.Disconnector) []session.ManagerOpt {
	opts := []session.ManagerOpt{
		session.WithStores(stores.Characters, stores.Buffs, stores.Locations, stores.Worlds),
		session.WithStartMap(c.StartMap),
		session.WithDisconnector(kicker),
	}
	for _, e := range c.MapEntries {
		opts = append(opts, session.WithMapEntry(e))
	}
	if d, err := time.ParseDuration(c.PersistInterval); err == nil {
		opts = append(opts, session.WithPersistInterval(d))
	}
	if c.FirstJoinerPermission > 0 {
		opts = append(opts, session.WithPermissionPolicy(session.FirstJoinerPolicy(c.FirstJoinerPermission)))
	}
	return opts
}
