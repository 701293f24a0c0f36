package domain

import "time"

// Ecosystem identifies the package ecosystem a dependency belongs to.
type Ecosystem string

const (
	EcosystemNPM   Ecosystem = "npm"
	EcosystemGo    Ecosystem = "go"
	EcosystemCargo Ecosystem = "cargo"
	EcosystemMaven Ecosystem = "maven"
	EcosystemPip   Ecosystem = "pip"
)

// DependencyKind distinguishes how a dependency is declared in its manifest.
type DependencyKind string

const (
	KindRuntime DependencyKind = "runtime"
	KindDev     DependencyKind = "dev"
	KindBuild   DependencyKind = "build"
)

// DependencyEntry is a single declared dependency extracted from a manifest.
// Version carries the raw declared string (which may be a range) verbatim;
// no normalization is applied.
type DependencyEntry struct {
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	Ecosystem  Ecosystem      `json:"ecosystem"`
	Kind       DependencyKind `json:"kind"`
	SourcePath string         `json:"source_path"`
}

// ParseWarning records a manifest that could not be fully parsed. Warnings
// are reported alongside the entries that did parse; a malformed manifest
// never fails the whole analysis.
type ParseWarning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// DependencyReport is the result of scanning a repository for dependency
// manifests. Entries are deduplicated by (name, ecosystem) and sorted by
// source path, then ecosystem, then name.
type DependencyReport struct {
	Owner         string            `json:"owner"`
	Repo          string            `json:"repo"`
	ManifestPaths []string          `json:"manifest_paths"`
	Entries       []DependencyEntry `json:"entries"`
	Warnings      []ParseWarning    `json:"warnings,omitempty"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
