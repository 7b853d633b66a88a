package cycle

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Factory creates a controller from a configuration.
type Factory func(config Config) (Controller, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterType registers a factory for a controller type.
func RegisterType(controllerType string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[controllerType] = factory
	logrus.Debugf("registered cycle type: %s", controllerType)
}

// Create builds a controller. Disabled configurations yield nil without error.
func Create(config Config) (Controller, error) {
	if !config.Enabled {
		logrus.Debugf("skipping disabled cycle: %s", config.ID)
		return nil, nil
	}

	factoriesMu.RLock()
	factory, exists := factories[config.Type]
	factoriesMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: unknown cycle type %s", ErrInvalidConfig, config.Type)
	}

	return factory(config)
}

// RegisterAll creates controllers in config order and registers them.
func RegisterAll(registry *Registry, configs []Config) error {
	for _, config := range configs {
		c, err := Create(config)
		if err != nil {
			return fmt.Errorf("failed to create cycle %s: %w", config.ID, err)
		}
		if c == nil {
			continue
		}
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	logrus.Infof("registered %d cycles", registry.Count())
	return nil
}
