package manifest

import (
	"bufio"
	"bytes"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

var requirementName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// splitRequirement splits a PEP 508 requirement line into the package name
// and whatever constraint text follows it, kept verbatim. Environment
// markers and trailing comments are stripped first.
func splitRequirement(req string) (name, version string, ok bool) {
	if i := strings.IndexAny(req, ";#"); i >= 0 {
		req = req[:i]
	}
	req = strings.TrimSpace(req)
	name = requirementName.FindString(req)
	if name == "" {
		return "", "", false
	}
	rest := strings.TrimSpace(req[len(name):])
	if strings.HasPrefix(rest, "[") {
		j := strings.Index(rest, "]")
		if j < 0 {
			return "", "", false
		}
		rest = strings.TrimSpace(rest[j+1:])
	}
	return name, rest, true
}

// pyProjectParser reads pyproject.toml. It understands PEP 621 [project]
// tables and falls back to legacy Poetry tables when present.
type pyProjectParser struct{}

func (p *pyProjectParser) Ecosystem() domain.Ecosystem { return domain.EcosystemPip }

func (p *pyProjectParser) Matches(filePath string) bool {
	return path.Base(filePath) == "pyproject.toml"
}

func (p *pyProjectParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	var project struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies    map[string]interface{} `toml:"dependencies"`
				DevDependencies map[string]interface{} `toml:"dev-dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(content, &project); err != nil {
		return nil, parseErr(filePath, err)
	}

	var entries []domain.DependencyEntry
	for _, req := range project.Project.Dependencies {
		if name, version, ok := splitRequirement(req); ok {
			entries = append(entries, pipEntry(name, version, domain.KindRuntime, filePath))
		}
	}
	groups := make([]string, 0, len(project.Project.OptionalDependencies))
	for group := range project.Project.OptionalDependencies {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	for _, group := range groups {
		for _, req := range project.Project.OptionalDependencies[group] {
			if name, version, ok := splitRequirement(req); ok {
				entries = append(entries, pipEntry(name, version, domain.KindDev, filePath))
			}
		}
	}

	entries = appendPoetry(entries, project.Tool.Poetry.Dependencies, domain.KindRuntime, filePath)
	entries = appendPoetry(entries, project.Tool.Poetry.DevDependencies, domain.KindDev, filePath)
	return entries, nil
}

func appendPoetry(entries []domain.DependencyEntry, deps map[string]interface{}, kind domain.DependencyKind, filePath string) []domain.DependencyEntry {
	names := make([]string, 0, len(deps))
	for name := range deps {
		// "python" is the interpreter constraint, not a dependency.
		if strings.EqualFold(name, "python") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		version := ""
		switch v := deps[name].(type) {
		case string:
			version = v
		case map[string]interface{}:
			if ver, ok := v["version"].(string); ok {
				version = ver
			}
		}
		entries = append(entries, pipEntry(name, version, kind, filePath))
	}
	return entries
}

// requirementsParser reads requirements*.txt files. Option lines ("-r",
// "--index-url"), editable installs, and direct URL references carry no
// parseable package name and are skipped.
type requirementsParser struct{}

func (p *requirementsParser) Ecosystem() domain.Ecosystem { return domain.EcosystemPip }

func (p *requirementsParser) Matches(filePath string) bool {
	base := path.Base(filePath)
	return strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt")
}

func (p *requirementsParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	kind := domain.KindRuntime
	base := path.Base(filePath)
	if strings.Contains(base, "dev") || strings.Contains(base, "test") {
		kind = domain.KindDev
	}

	var entries []domain.DependencyEntry
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if strings.Contains(line, "://") {
			continue
		}
		if name, version, ok := splitRequirement(line); ok {
			entries = append(entries, pipEntry(name, version, kind, filePath))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, parseErr(filePath, err)
	}
	return entries, nil
}

func pipEntry(name, version string, kind domain.DependencyKind, filePath string) domain.DependencyEntry {
	return domain.DependencyEntry{
		Name:       name,
		Version:    version,
		Ecosystem:  domain.EcosystemPip,
		Kind:       kind,
		SourcePath: filePath,
	}
}
