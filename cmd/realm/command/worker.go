package command

import (
	"fmt"

	"github.com/pixil98/go-realm/internal/containers"
	"github.com/pixil98/go-realm/internal/dispatch"
	"github.com/pixil98/go-realm/internal/driver"
	"github.com/pixil98/go-realm/internal/economy"
	"github.com/pixil98/go-realm/internal/handlers"
	"github.com/pixil98/go-realm/internal/messaging"
	"github.com/pixil98/go-realm/internal/session"
	"github.com/pixil98/go-realm/internal/social"
	"github.com/pixil98/go-realm/internal/telemetry"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	r, err := cfg.Rules.BuildRules()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Rules.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("building text catalog: %w", err)
	}
	stores, err := cfg.Storage.BuildStores()
	if err != nil {
		return nil, err
	}
	provider, err := cfg.Metrics.buildProvider()
	if err != nil {
		return nil, fmt.Errorf("creating meter provider: %w", err)
	}

	// Bus and map host
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	pub := messaging.NewNatsPublisher(nats)
	host := messaging.NewHostClient(nats)

	// Gameplay services
	storages := containers.NewController(r, host, pub, containers.WithStore(stores.Storages))
	sessions := session.NewManager(host, host, storages, cfg.Session.managerOpts(stores, pub)...)
	coord, err := social.NewCoordinator(r, sessions, pub,
		social.WithGuildStore(stores.Guilds),
		social.WithCatalog(catalog),
	)
	if err != nil {
		return nil, fmt.Errorf("creating social coordinator: %w", err)
	}
	sessions.SetMembershipSync(coord)
	bank := economy.NewBank(r, sessions, coord, economy.WithAccountStore(stores.Accounts))

	var driverOpts []driver.RealmDriverOpt
	if d := cfg.tickLength(); d > 0 {
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	realm := driver.NewRealmDriver([]driver.Manager{sessions, storages}, driverOpts...)

	d, err := dispatch.New(realm, dispatch.WithMeterProvider(provider.MeterProvider()))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	handlers.New(sessions, storages, coord, bank).Register(d)

	workers := service.WorkerList{
		"nats":    nats,
		"host":    host,
		"gateway": messaging.NewGateway(nats, d, sessions),
		"driver":  realm,
	}
	if cfg.Metrics.Addr != "" {
		workers["metrics"] = telemetry.NewMetricsServer(provider, cfg.Metrics.Addr)
	}
	return workers, nil
}
