// Package config provides configuration management for the configurator.
package config

import (
	"fmt"
	"strings"
)

// ResolverConfig holds the policy knobs of the constraint engine.
type ResolverConfig struct {
	// OverrideScopeLimit is the largest product scope at which per-product
	// overrides replace computed availability.
	OverrideScopeLimit int

	// NeverDisable lists fields exempt from automatic disabling.
	NeverDisable []string

	// FieldDependencies optionally narrows a field's upstream filter set,
	// "field:dep1,dep2" per entry. Fields not listed depend on every field
	// declared before them.
	FieldDependencies []string
}

// DefaultResolverConfig returns configuration with default values.
func DefaultResolverConfig() *ResolverConfig {
	return &ResolverConfig{
		OverrideScopeLimit: 2,
		NeverDisable:       []string{"accessories"},
	}
}

// validateConfig checks the resolver policy values.
func validateConfig(cfg *ResolverConfig) error {
	if cfg.OverrideScopeLimit < 1 {
		return fmt.Errorf("override_scope_limit must be at least 1, got %d", cfg.OverrideScopeLimit)
	}
	for _, entry := range cfg.FieldDependencies {
		if _, _, err := ParseDependency(entry); err != nil {
			return err
		}
	}
	return nil
}

// ParseDependency splits a "field:dep1,dep2" entry. An empty dependency
// list is valid and means the field filters on nothing.
func ParseDependency(entry string) (field string, deps []string, err error) {
	parts := strings.SplitN(entry, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", nil, fmt.Errorf("dependency entry %q: format must be field:dep1,dep2", entry)
	}
	field = strings.TrimSpace(parts[0])
	for _, dep := range strings.Split(parts[1], ",") {
		dep = strings.TrimSpace(dep)
		if dep != "" {
			deps = append(deps, dep)
		}
	}
	return field, deps, nil
}
