package manifest

import (
	"path"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// cargoParser reads Cargo.toml. Dependency values are either a bare version
// string or a table; for tables the "version" key is taken when present, so
// git and path dependencies end up with an empty version.
type cargoParser struct{}

func (p *cargoParser) Ecosystem() domain.Ecosystem { return domain.EcosystemCargo }

func (p *cargoParser) Matches(filePath string) bool {
	return path.Base(filePath) == "Cargo.toml"
}

func (p *cargoParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	var cargo struct {
		Dependencies      map[string]interface{} `toml:"dependencies"`
		DevDependencies   map[string]interface{} `toml:"dev-dependencies"`
		BuildDependencies map[string]interface{} `toml:"build-dependencies"`
	}
	if err := toml.Unmarshal(content, &cargo); err != nil {
		return nil, parseErr(filePath, err)
	}
	var entries []domain.DependencyEntry
	entries = appendCargo(entries, cargo.Dependencies, domain.KindRuntime, filePath)
	entries = appendCargo(entries, cargo.DevDependencies, domain.KindDev, filePath)
	entries = appendCargo(entries, cargo.BuildDependencies, domain.KindBuild, filePath)
	return entries, nil
}

func appendCargo(entries []domain.DependencyEntry, deps map[string]interface{}, kind domain.DependencyKind, filePath string) []domain.DependencyEntry {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, domain.DependencyEntry{
			Name:       name,
			Version:    cargoVersion(deps[name]),
			Ecosystem:  domain.EcosystemCargo,
			Kind:       kind,
			SourcePath: filePath,
		})
	}
	return entries
}

func cargoVersion(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return ""
}
