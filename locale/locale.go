// Package locale turns phrase keys and named values into user-facing text.
//
// Keys are the English phrases themselves, so an empty catalog still renders
// sensible output. Per-network overrides can be loaded from a YAML file:
//
//	"*":
//	  "I'm right here.": "Present!"
//	twitch:
//	  "I don't know who {nick} is.": "Never heard of {nick}."
package locale

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// AnyNetwork is the override section applied to every network.
const AnyNetwork = "*"

// Vars are the named substitution values for a template.
type Vars map[string]string

// Localizer renders a template key for a network.
type Localizer interface {
	Localize(network, key string, vars Vars) string
}

// Catalog is a Localizer backed by per-network template overrides.
type Catalog struct {
	mu        sync.RWMutex
	overrides map[string]map[string]string
}

// NewCatalog returns a catalog with no overrides.
func NewCatalog() *Catalog {
	return &Catalog{overrides: make(map[string]map[string]string)}
}

// LoadFile reads a YAML override file into a new catalog.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}
	c := NewCatalog()
	if err := c.Load(raw); err != nil {
		return nil, fmt.Errorf("parse locale file %s: %w", path, err)
	}
	return c, nil
}

// Load merges YAML overrides into the catalog.
func (c *Catalog) Load(raw []byte) error {
	var doc map[string]map[string]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for network, templates := range doc {
		for key, tmpl := range templates {
			c.setLocked(network, key, tmpl)
		}
	}
	return nil
}

// Set overrides one template for a network (or AnyNetwork).
func (c *Catalog) Set(network, key, template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(network, key, template)
}

func (c *Catalog) setLocked(network, key, template string) {
	m, ok := c.overrides[network]
	if !ok {
		m = make(map[string]string)
		c.overrides[network] = m
	}
	m[key] = template
}

// Localize picks the network override, then the AnyNetwork override, then the
// key itself, and substitutes {name} tokens from vars.
func (c *Catalog) Localize(network, key string, vars Vars) string {
	return Format(c.template(network, key), vars)
}

func (c *Catalog) template(network, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.overrides[network][key]; ok {
		return t
	}
	if t, ok := c.overrides[AnyNetwork][key]; ok {
		return t
	}
	return key
}

// Format replaces every {name} in template with vars[name]. Tokens without a
// value are left untouched.
func Format(template string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
