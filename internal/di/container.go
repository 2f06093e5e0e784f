package di

import (
	"fmt"
	"sync"
)

// Container is the small string-keyed service registry the CLI commands
// share. The run command uses the fx module in this package instead.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		services: make(map[string]interface{}),
	}
}

// Register stores a service under a name, replacing any previous one.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// Get returns a registered service.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	service, ok := c.services[name]
	if !ok {
		return nil, fmt.Errorf("service %q not registered", name)
	}
	return service, nil
}
