package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ResolverConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultResolverConfig
	v.SetDefault("resolver.override_scope_limit", 2)
	v.SetDefault("resolver.never_disable", []string{"accessories"})
	v.SetDefault("resolver.field_dependencies", []string{})

	// Bind environment variables with MTX_ prefix
	v.SetEnvPrefix("MTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ResolverConfig{
		OverrideScopeLimit: v.GetInt("resolver.override_scope_limit"),
		NeverDisable:       v.GetStringSlice("resolver.never_disable"),
		FieldDependencies:  v.GetStringSlice("resolver.field_dependencies"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
