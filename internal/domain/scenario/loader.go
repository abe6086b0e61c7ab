package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentSchemaVersion is the scenario file version this loader understands
const CurrentSchemaVersion = 1

// DefaultPlatforms used when a scenario file omits them
var DefaultPlatforms = []string{"google", "meta", "tiktok"}

// Loader reads scenario definitions from a directory of YAML files and
// resolves aliases. Specs are parsed once and cached; they never change
// after load.
type Loader struct {
	dir   string
	specs map[string]*Spec
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, specs: make(map[string]*Spec)}
}

// Load resolves a scenario by name or alias
func (l *Loader) Load(name string) (*Spec, error) {
	if spec, ok := l.specs[name]; ok {
		return spec, nil
	}

	// A missing scenario dir is fine, built-ins still resolve
	entries, err := os.ReadDir(l.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read scenario dir %s: %w", l.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		spec, err := l.parseFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if spec.Name == name || contains(spec.Aliases, name) {
			l.specs[name] = spec
			return spec, nil
		}
	}

	// Built-in scenarios keep the toolkit usable without a scenario dir
	if spec, ok := builtins[name]; ok {
		l.specs[name] = spec
		return spec, nil
	}

	return nil, fmt.Errorf("scenario %q not found in %s", name, l.dir)
}

func (l *Loader) parseFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file %s: %w", path, err)
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("scenario file %s: name is required", path)
	}
	if spec.SchemaVersion != CurrentSchemaVersion {
		return nil, fmt.Errorf("scenario file %s: unsupported schema version %d", path, spec.SchemaVersion)
	}
	applyDefaults(&spec)
	return &spec, nil
}

func applyDefaults(spec *Spec) {
	if spec.Trend == "" {
		spec.Trend = TrendFlat
	}
	if spec.BaseImpressions == 0 {
		spec.BaseImpressions = 10000
	}
	if len(spec.Platforms) == 0 {
		spec.Platforms = append([]string(nil), DefaultPlatforms...)
	}
	if spec.Days == 0 {
		spec.Days = 30
	}
	if spec.DateAnchor.IsZero() {
		spec.DateAnchor = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
}

var builtins = map[string]*Spec{
	"baseline": {
		Name:            "baseline",
		Trend:           TrendFlat,
		BaseImpressions: 10000,
		DateAnchor:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SchemaVersion:   CurrentSchemaVersion,
		Platforms:       DefaultPlatforms,
		Days:            30,
	},
	"growth": {
		Name:            "growth",
		Trend:           TrendGrowth,
		BaseImpressions: 8000,
		DateAnchor:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SchemaVersion:   CurrentSchemaVersion,
		Platforms:       DefaultPlatforms,
		Days:            30,
	},
	"collapse": {
		Name:            "collapse",
		Trend:           TrendDecline,
		BaseImpressions: 20000,
		DateAnchor:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SchemaVersion:   CurrentSchemaVersion,
		Platforms:       DefaultPlatforms,
		Days:            30,
	},
}

// FixtureStore persists golden fixtures as JSON files keyed by scenario and seed
type FixtureStore struct {
	dir string
}

// NewFixtureStore creates a fixture store rooted at dir
func NewFixtureStore(dir string) *FixtureStore {
	return &FixtureStore{dir: dir}
}

func (s *FixtureStore) path(scenarioID string, seed int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d.golden.json", scenarioID, seed))
}

// Load reads the golden fixture for a scenario+seed
func (s *FixtureStore) Load(scenarioID string, seed int64) (*Fixture, error) {
	data, err := os.ReadFile(s.path(scenarioID, seed))
	if err != nil {
		return nil, fmt.Errorf("read fixture for %s seed %d: %w", scenarioID, seed, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture for %s seed %d: %w", scenarioID, seed, err)
	}
	return &f, nil
}

// Save writes a golden fixture
func (s *FixtureStore) Save(f *Fixture) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	return os.WriteFile(s.path(f.ScenarioID, f.Seed), data, 0o644)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
