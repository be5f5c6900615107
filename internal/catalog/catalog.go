// Package catalog holds the exercise names the editor suggests.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Exercises []string `yaml:"exercises"`
}

// Catalog is the list of suggested exercise names. User-created names are
// appended after the shipped ones.
type Catalog struct {
	mu    sync.RWMutex
	names []string
	seen  map[string]bool
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault is Default for callers that cannot handle an error; the
// embedded file is fixed at build time.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from a YAML document with an `exercises` list.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c := &Catalog{seen: make(map[string]bool)}
	for _, n := range f.Exercises {
		c.add(n)
	}
	return c, nil
}

// Names returns the names in catalog order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.names...)
}

// Add appends a user-created name. Blank names and case-insensitive
// duplicates are ignored; the return value reports whether it was added.
func (c *Catalog) Add(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(name)
}

func (c *Catalog) add(name string) bool {
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)
	if name == "" || c.seen[key] {
		return false
	}
	c.seen[key] = true
	c.names = append(c.names, name)
	return true
}
