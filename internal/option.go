package internal

import "github.com/motioneffector/wiki/internal/storage"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	store  storage.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore injects a pre-built storage provider, bypassing the
// configured driver. Used by tests.
func WithStore(store storage.Provider) Option {
	return func(a *application) {
		a.store = store
	}
}
