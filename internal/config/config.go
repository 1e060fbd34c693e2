package config

import (
	"fmt"
	"strings"
)

// Config holds the demo program configuration.
type Config struct {
	Members  []string
	Keys     []string
	Replicas int
}

// ParseList parses a comma-separated list of names, e.g. "cacheA,cacheB,cacheC".
// Surrounding whitespace is trimmed and blank entries are skipped; duplicate
// names are rejected.
func ParseList(listStr string) ([]string, error) {
	if listStr == "" {
		return []string{}, nil
	}

	parts := strings.Split(listStr, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate name: %s", name)
		}
		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}

// Validate checks that the configuration can drive a ring.
func (c *Config) Validate() error {
	if len(c.Members) == 0 {
		return fmt.Errorf("at least one member is required")
	}
	if len(c.Keys) == 0 {
		return fmt.Errorf("at least one key is required")
	}
	if c.Replicas <= 0 {
		return fmt.Errorf("replicas must be positive, got %d", c.Replicas)
	}
	return nil
}

// Load parses the raw flag values into a validated Config.
func Load(membersStr, keysStr string, replicas int) (*Config, error) {
	members, err := ParseList(membersStr)
	if err != nil {
		return nil, fmt.Errorf("invalid members list: %w", err)
	}

	keys, err := ParseList(keysStr)
	if err != nil {
		return nil, fmt.Errorf("invalid keys list: %w", err)
	}

	cfg := &Config{
		Members:  members,
		Keys:     keys,
		Replicas: replicas,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
