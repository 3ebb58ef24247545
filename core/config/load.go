package config

import (
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Load reads the configuration from path, a config.yaml file or the
// directory holding one. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Configuration, error) {
	if path == "" {
		return Default(), nil
	}
	if filepath.Base(path) != ConfigurationName {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
