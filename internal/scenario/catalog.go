package scenario

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Harshitk-cp/mentalize/internal/domain"
)

var ErrScenarioNotFound = errors.New("scenario not found")

// Catalog is a concurrency-safe registry of compiled scenarios.
type Catalog struct {
	mu        sync.RWMutex
	scenarios map[string]*Compiled
}

func NewCatalog() *Catalog {
	return &Catalog{scenarios: make(map[string]*Compiled)}
}

// Default returns a catalog holding the built-in scenarios followed by any
// found in dir. A scenario in dir replaces a built-in of the same name.
func Default(dir string) (*Catalog, error) {
	c := NewCatalog()
	for _, s := range Builtins() {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	extra, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, s := range extra {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add compiles s and registers it, replacing any scenario with the same name.
func (c *Catalog) Add(s domain.Scenario) error {
	compiled, err := Compile(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.scenarios[s.Name] = compiled
	c.mu.Unlock()
	return nil
}

// List returns the registered scenarios sorted by name.
func (c *Catalog) List() []domain.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Scenario, 0, len(c.scenarios))
	for _, compiled := range c.scenarios {
		out = append(out, compiled.Scenario)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Get(name string) (domain.Scenario, error) {
	compiled, err := c.Compiled(name)
	if err != nil {
		return domain.Scenario{}, err
	}
	return compiled.Scenario, nil
}

func (c *Catalog) Compiled(name string) (*Compiled, error) {
	c.mu.RLock()
	compiled, ok := c.scenarios[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	return compiled, nil
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scenarios)
}
