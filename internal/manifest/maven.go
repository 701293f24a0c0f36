package manifest

import (
	"encoding/xml"
	"path"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// mavenParser reads pom.xml. Entries are named groupId:artifactId, the
// Maven coordinate convention. Versions that reference properties
// ("${junit.version}") are kept verbatim like every other version string.
type mavenParser struct{}

func (p *mavenParser) Ecosystem() domain.Ecosystem { return domain.EcosystemMaven }

func (p *mavenParser) Matches(filePath string) bool {
	return path.Base(filePath) == "pom.xml"
}

func (p *mavenParser) Parse(filePath string, content []byte) ([]domain.DependencyEntry, error) {
	var pom struct {
		XMLName      xml.Name `xml:"project"`
		Dependencies struct {
			Dependency []struct {
				GroupID    string `xml:"groupId"`
				ArtifactID string `xml:"artifactId"`
				Version    string `xml:"version"`
				Scope      string `xml:"scope"`
			} `xml:"dependency"`
		} `xml:"dependencies"`
	}
	if err := xml.Unmarshal(content, &pom); err != nil {
		return nil, parseErr(filePath, err)
	}
	var entries []domain.DependencyEntry
	for _, dep := range pom.Dependencies.Dependency {
		if dep.ArtifactID == "" {
			continue
		}
		name := dep.ArtifactID
		if dep.GroupID != "" {
			name = dep.GroupID + ":" + dep.ArtifactID
		}
		kind := domain.KindRuntime
		if dep.Scope == "test" {
			kind = domain.KindDev
		}
		entries = append(entries, domain.DependencyEntry{
			Name:       name,
			Version:    dep.Version,
			Ecosystem:  domain.EcosystemMaven,
			Kind:       kind,
			SourcePath: filePath,
		})
	}
	return entries, nil
}
