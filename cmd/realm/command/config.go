package command

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string        `json:"tick_interval" env:"REALM_TICK_INTERVAL"`
	Nats         NatsConfig    `json:"nats"`
	Storage      StorageConfig `json:"storage"`
	Rules        RulesConfig   `json:"rules"`
	Session      SessionConfig `json:"session"`
	Metrics      MetricsConfig `json:"metrics"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 10*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 10ms"))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Rules.validate())
	el.Add(c.Session.validate())
	el.Add(c.Metrics.validate())

	return el.Err()
}

// applyEnv overrides file settings with any REALM_* variables that are set.
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

func (c *Config) tickLength() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}
