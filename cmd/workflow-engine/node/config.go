package node

import (
	"encoding/json"
	"fmt"
)

// Config is the declarative descriptor of one node in a workflow
// description. Form holds per-node configuration (may contain template
// expressions); ConfigMap holds wiring hints written by pre-processors
// (queue names and the like).
type Config struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data Data   `json:"data"`
}

// Data is the form/config bag of a node descriptor
type Data struct {
	Form   map[string]interface{} `json:"form"`
	Config map[string]interface{} `json:"config"`
}

// Form returns the form map, never nil
func (c *Config) Form() map[string]interface{} {
	if c.Data.Form == nil {
		c.Data.Form = make(map[string]interface{})
	}
	return c.Data.Form
}

// ConfigMap returns the config map, never nil
func (c *Config) ConfigMap() map[string]interface{} {
	if c.Data.Config == nil {
		c.Data.Config = make(map[string]interface{})
	}
	return c.Data.Config
}

// ConfigString returns a string entry from the config map
func (c *Config) ConfigString(key string) (string, bool) {
	val, ok := c.ConfigMap()[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// SetConfig writes an entry into the config map
func (c *Config) SetConfig(key string, value interface{}) {
	c.ConfigMap()[key] = value
}

// Clone returns a deep copy of the config (via JSON round-trip)
func (c *Config) Clone() (*Config, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to clone config %s: %w", c.ID, err)
	}
	var clone Config
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, fmt.Errorf("failed to clone config %s: %w", c.ID, err)
	}
	return &clone, nil
}
