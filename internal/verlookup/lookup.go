// Package verlookup resolves the latest known version of a package so
// dependency staleness can be judged. The process never talks to package
// registries itself; callers supply the inventory, and an absent lookup
// simply means staleness evidence is unavailable.
package verlookup

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// Lookup answers the newest version known for a package. ok is false when
// the package is simply unknown; err is reserved for lookups that can fail,
// such as a remote-backed implementation.
type Lookup interface {
	Latest(ctx context.Context, ecosystem domain.Ecosystem, name string) (version string, ok bool, err error)
}

// Static is a fixed in-memory lookup keyed by ecosystem and package name.
// It backs tests and callers that bring their own version inventory.
type Static map[domain.Ecosystem]map[string]string

func (s Static) Latest(_ context.Context, ecosystem domain.Ecosystem, name string) (string, bool, error) {
	versions, ok := s[ecosystem]
	if !ok {
		return "", false, nil
	}
	version, ok := versions[name]
	return version, ok, nil
}

var knownEcosystems = map[domain.Ecosystem]bool{
	domain.EcosystemNPM:   true,
	domain.EcosystemGo:    true,
	domain.EcosystemCargo: true,
	domain.EcosystemMaven: true,
	domain.EcosystemPip:   true,
}

// ParseStatic reads a YAML version inventory, one top-level key per
// ecosystem mapping package names to their latest version.
func ParseStatic(data []byte) (Static, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse version inventory: %w", err)
	}
	inventory := make(Static, len(raw))
	for name, versions := range raw {
		ecosystem := domain.Ecosystem(name)
		if !knownEcosystems[ecosystem] {
			return nil, fmt.Errorf("version inventory references unknown ecosystem %q", name)
		}
		inventory[ecosystem] = versions
	}
	return inventory, nil
}

// Outdated reports whether a declared version is older than the latest
// known one. The comparison is best-effort on the leading numeric
// components after stripping range sigils; anything non-numeric on either
// side is never considered stale.
func Outdated(declared, latest string) bool {
	d, ok := leadingVersion(declared)
	if !ok {
		return false
	}
	l, ok := leadingVersion(latest)
	if !ok {
		return false
	}
	for i := 0; i < len(d) || i < len(l); i++ {
		dv, lv := 0, 0
		if i < len(d) {
			dv = d[i]
		}
		if i < len(l) {
			lv = l[i]
		}
		if dv != lv {
			return dv < lv
		}
	}
	return false
}

func leadingVersion(s string) ([]int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "^~=<>v ")
	if i := strings.IndexAny(s, " ,"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			// "1.x" style wildcards: keep what parsed so far.
			break
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return nil, false
	}
	return nums, true
}
