package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rdm-protocol/rdm-go/internal/testharness/mock"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// ParseScenario parses and validates a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	if err := validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenario loads a scenario from a file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	sc, err := ParseScenario(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	sc.File = path
	return sc, nil
}

// LoadDirectory loads all scenarios from a directory, sorted by ID.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var scenarios []*Scenario
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[sc.ID]; ok {
			return nil, &LoadError{
				File:    path,
				Message: fmt.Sprintf("scenario ID %s already defined in %s", sc.ID, prev),
			}
		}
		seen[sc.ID] = path
		scenarios = append(scenarios, sc)
	}

	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].ID < scenarios[j].ID })
	return scenarios, nil
}

// FilterByTag returns the scenarios carrying tag. An empty tag keeps all.
func FilterByTag(scenarios []*Scenario, tag string) []*Scenario {
	if tag == "" {
		return scenarios
	}
	var result []*Scenario
	for _, sc := range scenarios {
		for _, t := range sc.Tags {
			if t == tag {
				result = append(result, sc)
				break
			}
		}
	}
	return result
}

// Config returns the engine configuration for the scenario.
func (sc *Scenario) Config() (discovery.Config, error) {
	cfg, err := discovery.ProfileConfig(sc.Profile)
	if err != nil {
		return discovery.Config{}, err
	}
	cfg.RemoveUnresponsive = sc.RemoveUnresponsive
	return cfg, nil
}

// Incremental reports whether the scenario runs an incremental pass.
func (sc *Scenario) Incremental() bool {
	return sc.Mode == ModeIncremental
}

func validate(sc *Scenario) error {
	if sc.ID == "" {
		return &LoadError{Message: "scenario ID is required"}
	}

	sc.Mode = strings.ToLower(strings.TrimSpace(sc.Mode))
	switch sc.Mode {
	case "":
		sc.Mode = ModeFull
	case ModeFull, ModeIncremental:
	default:
		return &LoadError{Message: fmt.Sprintf("%s: mode must be %q or %q, got %q", sc.ID, ModeFull, ModeIncremental, sc.Mode)}
	}

	if _, err := discovery.ProfileConfig(sc.Profile); err != nil {
		return &LoadError{Message: sc.ID, Cause: err}
	}
	if _, err := mock.ParseOverlap(sc.Overlap); err != nil {
		return &LoadError{Message: sc.ID, Cause: err}
	}
	if sc.Port < 0 || sc.TODCapacity < 0 {
		return &LoadError{Message: fmt.Sprintf("%s: port and tod_capacity must not be negative", sc.ID)}
	}

	seen := make(map[uid.UID]bool, len(sc.Responders))
	for _, r := range sc.Responders {
		if r.UID.IsBroadcast() {
			return &LoadError{Line: r.Line, Message: fmt.Sprintf("%s: responder UID %s is a broadcast address", sc.ID, r.UID)}
		}
		if seen[r.UID] {
			return &LoadError{Line: r.Line, Message: fmt.Sprintf("%s: duplicate responder %s", sc.ID, r.UID)}
		}
		seen[r.UID] = true
	}

	if sc.TODCapacity > 0 && len(sc.InitialTOD) > sc.TODCapacity {
		return &LoadError{Message: fmt.Sprintf("%s: initial_tod holds %d UIDs, capacity is %d", sc.ID, len(sc.InitialTOD), sc.TODCapacity)}
	}
	return nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
