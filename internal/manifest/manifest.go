// Package manifest extracts declared dependencies from the manifest files
// of the ecosystems we understand. Parsing is pure: the same inputs always
// produce the same report, and a malformed manifest degrades to a warning
// instead of failing the scan.
package manifest

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// Parser extracts dependency entries from one manifest format.
type Parser interface {
	// Ecosystem tags every entry this parser produces.
	Ecosystem() domain.Ecosystem
	// Matches reports whether the file at path is a manifest this parser
	// understands. Only the base name is considered.
	Matches(path string) bool
	// Parse extracts entries from the manifest content. An error means the
	// whole file was unusable; the caller records it as a warning.
	Parse(path string, content []byte) ([]domain.DependencyEntry, error)
}

// File is one fetched manifest handed to the registry for parsing.
type File struct {
	Path    string
	Content []byte
}

// Registry holds the known parsers in scan priority order. Lockfiles come
// before their companion manifests so exact versions win the dedup.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry with all supported parsers registered.
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			&npmLockParser{},
			&npmParser{},
			&goModParser{},
			&cargoParser{},
			&mavenParser{},
			&pyProjectParser{},
			&requirementsParser{},
		},
	}
}

// skipDirs are path segments whose manifests describe vendored code, not
// the repository's own declarations.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// Detect filters a repository file listing down to the manifest paths the
// registry can parse, ordered by parser priority and then by path.
func (r *Registry) Detect(paths []string) []string {
	var detected []string
	for _, parser := range r.parsers {
		var matches []string
		for _, p := range paths {
			if vendored(p) {
				continue
			}
			if parser.Matches(p) {
				matches = append(matches, p)
			}
		}
		sort.Strings(matches)
		detected = append(detected, matches...)
	}
	return detected
}

// Scan parses all files and assembles the deduplicated, sorted entry list.
// Files are processed in parser priority order regardless of input order,
// and within one parser in path order, so the first occurrence of a
// (name, ecosystem) pair is stable.
func (r *Registry) Scan(files []File) ([]domain.DependencyEntry, []domain.ParseWarning) {
	byPath := make(map[string]File, len(files))
	var paths []string
	for _, f := range files {
		byPath[f.Path] = f
		paths = append(paths, f.Path)
	}

	var entries []domain.DependencyEntry
	var warnings []domain.ParseWarning
	seen := make(map[string]bool)

	for _, p := range r.Detect(paths) {
		f := byPath[p]
		parser, ok := r.parserFor(p)
		if !ok {
			continue
		}
		parsed, err := parser.Parse(f.Path, f.Content)
		if err != nil {
			warnings = append(warnings, domain.ParseWarning{Path: f.Path, Reason: err.Error()})
			continue
		}
		for _, e := range parsed {
			key := string(e.Ecosystem) + "\x00" + e.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SourcePath != entries[j].SourcePath {
			return entries[i].SourcePath < entries[j].SourcePath
		}
		if entries[i].Ecosystem != entries[j].Ecosystem {
			return entries[i].Ecosystem < entries[j].Ecosystem
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, warnings
}

func (r *Registry) parserFor(p string) (Parser, bool) {
	for _, parser := range r.parsers {
		if parser.Matches(p) {
			return parser, true
		}
	}
	return nil, false
}

func vendored(p string) bool {
	for _, segment := range strings.Split(path.Dir(p), "/") {
		if skipDirs[segment] {
			return true
		}
	}
	return false
}

func parseErr(p string, err error) error {
	return fmt.Errorf("parsing %s: %w", p, err)
}
