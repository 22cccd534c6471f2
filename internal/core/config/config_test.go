// internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultResolverConfig(t *testing.T) {
	cfg := DefaultResolverConfig()
	if cfg.OverrideScopeLimit != 2 {
		t.Errorf("OverrideScopeLimit = %d, want 2", cfg.OverrideScopeLimit)
	}
	if !reflect.DeepEqual(cfg.NeverDisable, []string{"accessories"}) {
		t.Errorf("NeverDisable = %v, want [accessories]", cfg.NeverDisable)
	}
	if err := validateConfig(cfg); err != nil {
		t.Errorf("validateConfig() error = %v, want nil on defaults", err)
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.OverrideScopeLimit != 2 {
		t.Errorf("OverrideScopeLimit = %d, want 2", cfg.OverrideScopeLimit)
	}
	if !reflect.DeepEqual(cfg.NeverDisable, []string{"accessories"}) {
		t.Errorf("NeverDisable = %v, want [accessories]", cfg.NeverDisable)
	}
	if len(cfg.FieldDependencies) != 0 {
		t.Errorf("FieldDependencies = %v, want empty", cfg.FieldDependencies)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `resolver:
  override_scope_limit: 3
  never_disable:
    - accessories
    - frame_color
  field_dependencies:
    - "light_output:light_direction"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.OverrideScopeLimit != 3 {
		t.Errorf("OverrideScopeLimit = %d, want 3", cfg.OverrideScopeLimit)
	}
	if !reflect.DeepEqual(cfg.NeverDisable, []string{"accessories", "frame_color"}) {
		t.Errorf("NeverDisable = %v, want [accessories frame_color]", cfg.NeverDisable)
	}
	if !reflect.DeepEqual(cfg.FieldDependencies, []string{"light_output:light_direction"}) {
		t.Errorf("FieldDependencies = %v", cfg.FieldDependencies)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `resolver:
  override_scope_limit: 0
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("LoadConfig() error = nil, want validation failure")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("LoadConfig() error = nil, want read failure")
	}
}

func TestParseDependency(t *testing.T) {
	tests := []struct {
		name      string
		entry     string
		wantField string
		wantDeps  []string
		wantErr   bool
	}{
		{"single dependency", "light_output:light_direction", "light_output", []string{"light_direction"}, false},
		{"multiple dependencies", "size:mirror_style, frame_thickness", "size", []string{"mirror_style", "frame_thickness"}, false},
		{"empty dependency list", "size:", "size", nil, false},
		{"missing colon", "size", "", nil, true},
		{"empty field", ":mirror_style", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, deps, err := ParseDependency(tt.entry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDependency() error = %v, wantErr %v", err, tt.wantErr)
			}
			if field != tt.wantField {
				t.Errorf("field = %q, want %q", field, tt.wantField)
			}
			if !reflect.DeepEqual(deps, tt.wantDeps) {
				t.Errorf("deps = %v, want %v", deps, tt.wantDeps)
			}
		})
	}
}

func TestValidateConfig_BadDependencyEntry(t *testing.T) {
	cfg := DefaultResolverConfig()
	cfg.FieldDependencies = []string{"no-colon"}
	if err := validateConfig(cfg); err == nil {
		t.Errorf("validateConfig() error = nil, want dependency format failure")
	}
}
