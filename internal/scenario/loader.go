package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Harshitk-cp/mentalize/internal/domain"
	"gopkg.in/yaml.v3"
)

type scenarioFile struct {
	Scenarios []domain.Scenario `yaml:"scenarios"`
}

// ParseYAML decodes either a single scenario document or a document with a
// top-level "scenarios" list. Unknown keys are rejected and every scenario is
// validated.
func ParseYAML(data []byte) ([]domain.Scenario, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("scenario: payload is empty")
	}

	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}

	var scenarios []domain.Scenario
	if _, ok := top["scenarios"]; ok {
		var file scenarioFile
		if err := decodeStrict(data, &file); err != nil {
			return nil, err
		}
		if len(file.Scenarios) == 0 {
			return nil, errors.New("scenario: scenarios list is empty")
		}
		scenarios = file.Scenarios
	} else {
		var single domain.Scenario
		if err := decodeStrict(data, &single); err != nil {
			return nil, err
		}
		scenarios = []domain.Scenario{single}
	}

	for _, s := range scenarios {
		if err := Validate(s); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("scenario: decode: %w", err)
	}
	return nil
}

func LoadFile(path string) ([]domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	scenarios, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return scenarios, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, in name order. A missing
// directory yields no scenarios.
func LoadDir(dir string) ([]domain.Scenario, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scenario: read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []domain.Scenario
	for _, name := range names {
		scenarios, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, scenarios...)
	}
	return out, nil
}
