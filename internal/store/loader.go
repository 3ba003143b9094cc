package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/factstack-labs/factgraph/pkg/formula"
	"gopkg.in/yaml.v3"
)

// entityDoc is the YAML shape of one fact source file: one document per
// entity listing its facts.
type entityDoc struct {
	Entity string    `yaml:"entity"`
	Facts  []factDoc `yaml:"facts"`
}

type factDoc struct {
	FactID  string   `yaml:"factId"`
	Value   string   `yaml:"value"`
	Numeric *float64 `yaml:"numeric"`
	AsOf    string   `yaml:"asOf"`
	Source  string   `yaml:"source"`
	Note    string   `yaml:"note"`
	Compute string   `yaml:"compute"`
}

var knownDocFields = map[string]bool{
	"entity": true,
	"facts":  true,
}

var knownFactFields = map[string]bool{
	"factId":  true,
	"value":   true,
	"numeric": true,
	"asOf":    true,
	"source":  true,
	"note":    true,
	"compute": true,
}

// Load reads every .yaml/.yml file in dir and builds an immutable fact
// store. Files are processed in name order; fact order within a file is
// preserved. Any structural violation fails the whole load.
func Load(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	s := &Store{
		byKey:    make(map[formula.FactKey]*Fact),
		byEntity: make(map[string][]*Fact),
	}

	for _, name := range files {
		if err := loadFile(s, filepath.Join(dir, name), name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// loadFile parses one entity document and adds its facts to the store.
func loadFile(s *Store, path, name string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return &SourceParseError{File: name, Message: err.Error()}
	}

	// Decode generically first to reject unknown fields, the same strict
	// posture the source corpus expects: a typo must not silently drop a
	// fact attribute.
	var raw struct {
		Entity string           `yaml:"entity"`
		Facts  []map[string]any `yaml:"facts"`
	}
	var rawDoc map[string]any
	if err := yaml.Unmarshal(content, &rawDoc); err != nil {
		return &SourceParseError{File: name, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for field := range rawDoc {
		if !knownDocFields[field] {
			return &UnknownFieldError{File: name, Field: field}
		}
	}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return &SourceParseError{File: name, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for _, factMap := range raw.Facts {
		for field := range factMap {
			if !knownFactFields[field] {
				return &UnknownFieldError{File: name, Field: field}
			}
		}
	}

	var doc entityDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return &SourceParseError{File: name, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	// Entity defaults to the file name without extension.
	entity := doc.Entity
	if entity == "" {
		entity = strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
	}

	for _, fd := range doc.Facts {
		fact, err := buildFact(entity, fd, name)
		if err != nil {
			return err
		}
		if err := s.add(fact, name); err != nil {
			return err
		}
	}
	return nil
}

// buildFact validates the leaf/derived exclusivity invariant and converts
// a decoded record into a Fact.
func buildFact(entity string, fd factDoc, file string) (*Fact, error) {
	if fd.FactID == "" {
		return nil, &InvalidFactDefinitionError{
			File: file, Entity: entity, FactID: "(missing)",
			Reason: "factId is required",
		}
	}

	key := formula.FactKey{Entity: entity, Fact: fd.FactID}
	switch {
	case fd.Compute != "" && fd.Numeric != nil:
		return nil, &InvalidFactDefinitionError{
			File: file, Entity: entity, FactID: fd.FactID,
			Reason: "a derived fact must not carry a pre-supplied numeric value",
		}
	case fd.Compute != "" && fd.Value != "":
		return nil, &InvalidFactDefinitionError{
			File: file, Entity: entity, FactID: fd.FactID,
			Reason: "a derived fact must not carry a pre-formatted value",
		}
	case fd.Compute == "" && fd.Numeric == nil && fd.Value == "":
		return nil, &InvalidFactDefinitionError{
			File: file, Entity: entity, FactID: fd.FactID,
			Reason: "a leaf fact needs a value and/or a numeric",
		}
	}

	return &Fact{
		Key:     key,
		Value:   fd.Value,
		Numeric: fd.Numeric,
		AsOf:    fd.AsOf,
		Source:  fd.Source,
		Note:    fd.Note,
		Compute: fd.Compute,
	}, nil
}
