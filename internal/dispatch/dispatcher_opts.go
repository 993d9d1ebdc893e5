package dispatch

import "go.opentelemetry.io/otel/metric"

type DispatcherOpt func(*dispatcherConfig)

type dispatcherConfig struct {
	provider metric.MeterProvider
}

// WithMeterProvider records dispatch metrics through mp.
func WithMeterProvider(mp metric.MeterProvider) DispatcherOpt {
	return func(c *dispatcherConfig) {
		c.provider = mp
	}
}
