package manifest

import (
	"path"

	"golang.org/x/mod/modfile"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// goModParser reads go.mod. Only direct requirements are reported;
// transitively pinned "// indirect" modules are not part of the project's
// declared surface.
type goModParser struct{}

func (p *goModParser) Ecosystem() domain.Ecosystem { return domain.EcosystemGo }

func (p *goModParser) Matches(filePath string) bool {
	return path.Base(filePath) == "go.mod"
}

func (p *goModParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	f, err := modfile.Parse(filePath, content, nil)
	if err != nil {
		return nil, parseErr(filePath, err)
	}
	var entries []domain.DependencyEntry
	for _, req := range f.Require {
		if req.Indirect {
			continue
		}
		entries = append(entries, domain.DependencyEntry{
			Name:       req.Mod.Path,
			Version:    req.Mod.Version,
			Ecosystem:  domain.EcosystemGo,
			Kind:       domain.KindRuntime,
			SourcePath: filePath,
		})
	}
	return entries, nil
}
