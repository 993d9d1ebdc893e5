package command

import (
	"github.com/pixil98/go-realm/internal/telemetry"
)

type MetricsConfig struct {
	// Addr serves /metrics; empty disables the endpoint.
	Addr string `json:"addr" env:"REALM_METRICS_ADDR"`
}

func (c *MetricsConfig) validate() error {
	return nil
}

func (c *MetricsConfig) buildProvider() (*telemetry.Provider, error) {
	p, err := telemetry.NewProvider(telemetry.DefaultServiceName, "")
	if err != nil {
		return nil, err
	}
	p.SetGlobal()
	return p, nil
}
