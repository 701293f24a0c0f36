package manifest

import (
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// npmParser reads package.json. Declared ranges are kept verbatim, so an
// entry's version may be "^4.17.21" rather than a concrete release.
type npmParser struct{}

func (p *npmParser) Ecosystem() domain.Ecosystem { return domain.EcosystemNPM }

func (p *npmParser) Matches(filePath string) bool {
	return path.Base(filePath) == "package.json"
}

func (p *npmParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, parseErr(filePath, err)
	}
	var entries []domain.DependencyEntry
	entries = appendSortedNPM(entries, pkg.Dependencies, domain.KindRuntime, filePath)
	entries = appendSortedNPM(entries, pkg.DevDependencies, domain.KindDev, filePath)
	return entries, nil
}

func appendSortedNPM(entries []domain.DependencyEntry, deps map[string]string, kind domain.DependencyKind, filePath string) []domain.DependencyEntry {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, domain.DependencyEntry{
			Name:       name,
			Version:    deps[name],
			Ecosystem:  domain.EcosystemNPM,
			Kind:       kind,
			SourcePath: filePath,
		})
	}
	return entries
}

// npmLockParser reads package-lock.json and yields the exact resolved
// versions. It understands both the v2/v3 "packages" layout and the legacy
// v1 "dependencies" layout.
type npmLockParser struct{}

func (p *npmLockParser) Ecosystem() domain.Ecosystem { return domain.EcosystemNPM }

func (p *npmLockParser) Matches(filePath string) bool {
	return path.Base(filePath) == "package-lock.json"
}

func (p *npmLockParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	var lock struct {
		Packages map[string]struct {
			Version string `json:"version"`
			Dev     bool   `json:"dev"`
		} `json:"packages"`
		Dependencies map[string]struct {
			Version string `json:"version"`
			Dev     bool   `json:"dev"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal(content, &lock); err != nil {
		return nil, parseErr(filePath, err)
	}

	type locked struct {
		version string
		dev     bool
	}
	deps := make(map[string]locked)
	if len(lock.Packages) > 0 {
		for pkgPath, pkg := range lock.Packages {
			// The "" key is the root project itself.
			idx := strings.LastIndex(pkgPath, "node_modules/")
			if pkgPath == "" || idx < 0 {
				continue
			}
			name := pkgPath[idx+len("node_modules/"):]
			deps[name] = locked{version: pkg.Version, dev: pkg.Dev}
		}
	} else {
		for name, pkg := range lock.Dependencies {
			deps[name] = locked{version: pkg.Version, dev: pkg.Dev}
		}
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]domain.DependencyEntry, 0, len(names))
	for _, name := range names {
		kind := domain.KindRuntime
		if deps[name].dev {
			kind = domain.KindDev
		}
		entries = append(entries, domain.DependencyEntry{
			Name:       name,
			Version:    deps[name].version,
			Ecosystem:  domain.EcosystemNPM,
			Kind:       kind,
			SourcePath: filePath,
		})
	}
	return entries, nil
}
