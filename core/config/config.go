package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the file name Load looks for when given a directory.
const ConfigurationName = "config.yaml"

// Configuration holds the user-tunable settings of an interactive session.
type Configuration struct {
	// Prompt is printed before each command line; ContinuationPrompt
	// before each continuation line of an unfinished command. PS1 and
	// PS2 in the environment override them.
	Prompt             string `json:"prompt"`
	ContinuationPrompt string `json:"continuation_prompt"`

	// HistoryFile persists interactive history; empty disables it.
	HistoryFile string `json:"history_file"`

	// AuditLog appends a JSON record of every executed command line to
	// the named file; empty disables it.
	AuditLog string `json:"audit_log"`

	// DefaultPath is used when PATH is absent from the environment.
	DefaultPath string `json:"default_path" validate:"required"`

	// Umask is the initial file creation mask, in octal.
	Umask string `json:"umask" validate:"omitempty,numeric"`

	// Env holds extra variables exported to every session.
	Env map[string]string `json:"env"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic("bad embedded default config: " + err.Error())
	}
	return &out
}
