package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// defaultStatePath is where resolved resource state is stored when the
// project file does not say otherwise.
const defaultStatePath = ".stackctl/state.json"

// Project represents the parsed stackctl.yaml project file after template
// rendering.
type Project struct {
	// Name is the short project name.
	Name string `yaml:"project"`
	// EnvFiles lists .env files loaded before rendering.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// State is the path of the local state file.
	State string `yaml:"state,omitempty"`
	// Stacks holds per-stack settings keyed by stack name.
	Stacks map[string]StackSettings `yaml:"stacks,omitempty"`

	// overrides from --set, applied on top of file values in ConfigSet
	overrides Vars
}

// StackSettings holds the settings of a single stack in the project file.
type StackSettings struct {
	// Config is the stack's configuration value mapping.
	Config map[string]string `yaml:"config,omitempty"`
}

// rawHeader extracts the fields needed before template rendering.
type rawHeader struct {
	EnvFiles []string `yaml:"envFiles"`
}

// Load reads the project file, loads its envFiles, renders the file through
// text/template with the merged variables, and parses the result. overrides
// take precedence over file-configured stack values.
func Load(path string, overrides Vars) (*Project, error) {
	if path == "" {
		return nil, fmt.Errorf("project file path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve project file path: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read project file %q: %w", absPath, err)
	}

	var header rawHeader
	if err := yaml.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("parse project file header: %w", err)
	}

	envFileVars, err := loadEnvFiles(filepath.Dir(absPath), header.EnvFiles)
	if err != nil {
		return nil, err
	}
	vars := MergeVars(VarsFromOS(), envFileVars, overrides)

	rendered, err := renderTemplate(filepath.Base(absPath), raw, vars)
	if err != nil {
		return nil, err
	}

	var project Project
	if err := yaml.Unmarshal(rendered, &project); err != nil {
		return nil, fmt.Errorf("parse rendered project file: %w", err)
	}
	project.overrides = overrides

	return &project, nil
}

// StatePath returns the configured state file path or the default.
func (p *Project) StatePath() string {
	if strings.TrimSpace(p.State) != "" {
		return p.State
	}
	return defaultStatePath
}

// ConfigSet returns the configuration set for the named stack. A stack with no
// entry in the project file gets an empty set; required keys then fail at
// Require time with the stack name attached.
func (p *Project) ConfigSet(stack string) *Set {
	values := make(map[string]string)
	if settings, ok := p.Stacks[stack]; ok {
		for k, v := range settings.Config {
			values[k] = v
		}
	}
	for k, v := range p.overrides {
		values[k] = v
	}
	return NewSet(stack, values)
}

// renderTemplate renders the project file through text/template so values can
// be pulled from the environment (e.g. {{ envOr "HCLOUD_TOKEN" "" }}).
func renderTemplate(name string, raw []byte, vars Vars) ([]byte, error) {
	funcs := template.FuncMap{
		"envOr": func(key, def string) string {
			if v, ok := vars[key]; ok && v != "" {
				return v
			}
			return def
		},
		"default": func(value, def string) string {
			if strings.TrimSpace(value) == "" {
				return def
			}
			return value
		},
		"toLower": strings.ToLower,
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse project template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("execute project template: %w", err)
	}
	return buf.Bytes(), nil
}
