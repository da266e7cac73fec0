package tsconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PluginName is the language-service plugin whose configuration block vigil
// looks for inside compilerOptions.plugins.
const PluginName = "@0no-co/graphqlsp"

// FileName is the project configuration document.
const FileName = "tsconfig.json"

// ErrNotFound is returned when no tsconfig.json exists in the start
// directory or any of its parents.
var ErrNotFound = errors.New("no tsconfig.json found")

// Resolved carries the raw plugin configuration together with the location
// it was loaded from.
type Resolved struct {
	PluginRaw json.RawMessage
	Path      string
}

// Root returns the directory the configuration was loaded from. Relative
// schema paths resolve against it.
func (r *Resolved) Root() string { return filepath.Dir(r.Path) }

// SchemaRef identifies the schema resource: one or more file paths or a
// single URL. It unmarshals from a JSON/YAML string or array of strings.
type SchemaRef []string

// Empty reports whether no schema option was configured.
func (r SchemaRef) Empty() bool { return len(r) == 0 }

// IsURL reports whether the reference points at an introspection endpoint.
func (r SchemaRef) IsURL() bool {
	return len(r) == 1 && (strings.HasPrefix(r[0], "http://") || strings.HasPrefix(r[0], "https://"))
}

func (r *SchemaRef) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*r = nil
			return nil
		}
		*r = SchemaRef{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("schema option must be a string or an array of strings")
	}
	*r = SchemaRef(many)
	return nil
}

func (r *SchemaRef) UnmarshalYAML(node *yaml.Node) error {
	var single string
	if err := node.Decode(&single); err == nil {
		if strings.TrimSpace(single) == "" {
			*r = nil
			return nil
		}
		*r = SchemaRef{single}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return fmt.Errorf("schema option must be a string or a sequence of strings")
	}
	*r = SchemaRef(many)
	return nil
}

// PluginConfig is the parsed plugin configuration block.
type PluginConfig struct {
	Schema        SchemaRef         `json:"schema" yaml:"schema"`
	SchemaHeaders map[string]string `json:"schemaHeaders" yaml:"headers"`
}

type tsconfigFile struct {
	CompilerOptions struct {
		Plugins []json.RawMessage `json:"plugins"`
	} `json:"compilerOptions"`
}

type pluginHeader struct {
	Name string `json:"name"`
}

// Resolve walks up from startDir looking for tsconfig.json and extracts the
// raw plugin block for the GraphQL language-service plugin. When the
// tsconfig carries no such block, a .graphqlrc.yml next to it is consulted
// as a fallback before giving up.
func Resolve(startDir string) (*Resolved, error) {
	path, ok, err := findConfig(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var file tsconfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: invalid tsconfig: %w", path, err)
	}
	for _, raw := range file.CompilerOptions.Plugins {
		var header pluginHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			continue
		}
		if header.Name == PluginName {
			return &Resolved{PluginRaw: raw, Path: path}, nil
		}
	}
	if raw, ok, err := graphqlrcFallback(filepath.Dir(path)); err != nil {
		return nil, err
	} else if ok {
		return &Resolved{PluginRaw: raw, Path: path}, nil
	}
	// An empty block still resolves; the missing schema option is reported
	// by the parse step with an actionable message.
	return &Resolved{PluginRaw: json.RawMessage(`{}`), Path: path}, nil
}

// ParsePluginConfig decodes a raw plugin block into a PluginConfig.
func ParsePluginConfig(raw json.RawMessage) (*PluginConfig, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty plugin configuration")
	}
	var cfg PluginConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid plugin configuration: %w", err)
	}
	return &cfg, nil
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

type graphqlrcFile struct {
	Schema SchemaRef `yaml:"schema"`
}

// graphqlrcFallback maps a .graphqlrc.yml schema entry into the plugin
// block shape so the rest of the pipeline sees one configuration format.
func graphqlrcFallback(dir string) (json.RawMessage, bool, error) {
	for _, name := range []string{".graphqlrc.yml", ".graphqlrc.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", path, err)
		}
		var rc graphqlrcFile
		if err := yaml.Unmarshal(data, &rc); err != nil {
			return nil, false, fmt.Errorf("%s: invalid graphqlrc: %w", path, err)
		}
		raw, err := json.Marshal(PluginConfig{Schema: rc.Schema})
		if err != nil {
			return nil, false, err
		}
		return raw, true, nil
	}
	return nil, false, nil
}
