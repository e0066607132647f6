package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultCatalog []byte

// Catalog is the on-disk persona configuration.
type Catalog struct {
	SharedRules string    `yaml:"sharedRules"`
	Personas    []Persona `yaml:"personas"`
}

// Seed returns the built-in gemstone customer personas.
func Seed() []Persona {
	items, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded persona catalog is invalid: %v", err))
	}
	return items
}

// LoadFile reads a catalog from path. An empty path yields Seed().
func LoadFile(path string) ([]Persona, error) {
	if strings.TrimSpace(path) == "" {
		return Seed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona catalog: %w", err)
	}
	items, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse persona catalog %s: %w", path, err)
	}
	return items, nil
}

// Parse decodes and validates a YAML catalog. Shared rules are appended to
// every script.
func Parse(data []byte) ([]Persona, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	if len(catalog.Personas) == 0 {
		return nil, errors.New("catalog has no personas")
	}

	shared := strings.TrimSpace(catalog.SharedRules)
	seen := make(map[string]struct{}, len(catalog.Personas))
	items := make([]Persona, 0, len(catalog.Personas))

	for i, item := range catalog.Personas {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return nil, fmt.Errorf("persona #%d has no key", i+1)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate persona key %q", item.ID)
		}
		seen[item.ID] = struct{}{}

		item.Script = strings.TrimSpace(item.Script)
		if item.Script == "" {
			return nil, fmt.Errorf("persona %q has no script", item.ID)
		}
		if shared != "" {
			item.Script = item.Script + "\n\n" + shared
		}
		if strings.TrimSpace(item.VoiceID) == "" {
			item.VoiceID = DefaultVoice
		}
		if strings.TrimSpace(item.Name) == "" {
			item.Name = item.ID
		}

		items = append(items, item)
	}

	return items, nil
}
