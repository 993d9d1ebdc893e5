package social

import (
	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/storage"
)

type CoordinatorOpt func(*Coordinator)

// WithGuildStore persists guilds through s.
func WithGuildStore(s storage.Storer[*Group]) CoordinatorOpt {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithCatalog renders courtesy messages from catalog.
func WithCatalog(catalog *display.Catalog) CoordinatorOpt {
	return func(c *Coordinator) {
		c.catalog = catalog
	}
}
