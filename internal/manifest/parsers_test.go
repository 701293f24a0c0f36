package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

func TestGoModParser(t *testing.T) {
	content := []byte(`module example.com/app

go 1.22

require (
	github.com/google/go-github/v62 v62.0.0
	github.com/spf13/cobra v1.8.0
)

require github.com/inconshreveable/mousetrap v1.1.0 // indirect
`)

	entries, err := (&goModParser{}).Parse("go.mod", content)

	require.NoError(t, err)
	require.Len(t, entries, 2, "indirect requirements are not declared dependencies")
	assert.Equal(t, "github.com/google/go-github/v62", entries[0].Name)
	assert.Equal(t, "v62.0.0", entries[0].Version)
	assert.Equal(t, domain.EcosystemGo, entries[0].Ecosystem)
}

func TestGoModParser_Malformed(t *testing.T) {
	_, err := (&goModParser{}).Parse("go.mod", []byte("require {"))
	assert.Error(t, err)
}

func TestCargoParser(t *testing.T) {
	content := []byte(`[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1.0"
tokio = { version = "1.37", features = ["full"] }
local-helper = { path = "../helper" }

[dev-dependencies]
criterion = "0.5"

[build-dependencies]
cc = "1.0"
`)

	entries, err := (&cargoParser{}).Parse("Cargo.toml", content)

	require.NoError(t, err)
	require.Len(t, entries, 5)

	byName := make(map[string]domain.DependencyEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, "1.0", byName["serde"].Version)
	assert.Equal(t, "1.37", byName["tokio"].Version)
	assert.Equal(t, "", byName["local-helper"].Version, "path dependencies declare no version")
	assert.Equal(t, domain.KindDev, byName["criterion"].Kind)
	assert.Equal(t, domain.KindBuild, byName["cc"].Kind)
}

func TestMavenParser(t *testing.T) {
	content := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>33.0.0-jre</version>
    </dependency>
    <dependency>
      <groupId>org.junit.jupiter</groupId>
      <artifactId>junit-jupiter</artifactId>
      <version>${junit.version}</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>
`)

	entries, err := (&mavenParser{}).Parse("pom.xml", content)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "com.google.guava:guava", entries[0].Name)
	assert.Equal(t, "33.0.0-jre", entries[0].Version)
	assert.Equal(t, domain.KindRuntime, entries[0].Kind)
	// Property placeholders stay verbatim.
	assert.Equal(t, "${junit.version}", entries[1].Version)
	assert.Equal(t, domain.KindDev, entries[1].Kind)
}

func TestPyProjectParser(t *testing.T) {
	content := []byte(`[project]
name = "demo"
dependencies = [
  "requests>=2.28,<3",
  "click",
  "uvicorn[standard]>=0.23 ; python_version >= '3.8'",
]

[project.optional-dependencies]
dev = ["pytest>=7"]
`)

	entries, err := (&pyProjectParser{}).Parse("pyproject.toml", content)

	require.NoError(t, err)
	require.Len(t, entries, 4)

	byName := make(map[string]domain.DependencyEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, ">=2.28,<3", byName["requests"].Version)
	assert.Equal(t, "", byName["click"].Version)
	assert.Equal(t, ">=0.23", byName["uvicorn"].Version, "extras and markers are stripped from the constraint")
	assert.Equal(t, domain.KindDev, byName["pytest"].Kind)
}

func TestPyProjectParser_Poetry(t *testing.T) {
	content := []byte(`[tool.poetry]
name = "demo"

[tool.poetry.dependencies]
python = "^3.11"
httpx = "^0.27"
rich = { version = "^13.0", optional = true }

[tool.poetry.dev-dependencies]
pytest = "^8.0"
`)

	entries, err := (&pyProjectParser{}).Parse("pyproject.toml", content)

	require.NoError(t, err)
	require.Len(t, entries, 3, "the python interpreter constraint is not a dependency")

	byName := make(map[string]domain.DependencyEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, "^0.27", byName["httpx"].Version)
	assert.Equal(t, "^13.0", byName["rich"].Version)
	assert.Equal(t, domain.KindDev, byName["pytest"].Kind)
}

func TestRequirementsParser(t *testing.T) {
	content := []byte(`# pinned deps
requests==2.31.0
flask >= 2.0  # web framework
-r other.txt
--index-url https://pypi.org/simple
git+https://github.com/x/y.git
numpy
`)

	entries, err := (&requirementsParser{}).Parse("requirements.txt", content)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "requests", entries[0].Name)
	assert.Equal(t, "==2.31.0", entries[0].Version)
	assert.Equal(t, "flask", entries[1].Name)
	assert.Equal(t, ">= 2.0", entries[1].Version)
	assert.Equal(t, "numpy", entries[2].Name)
	assert.Equal(t, "", entries[2].Version)
}

func TestRequirementsParser_DevVariant(t *testing.T) {
	entries, err := (&requirementsParser{}).Parse("requirements-dev.txt", []byte("pytest==8.0.0\n"))

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.KindDev, entries[0].Kind)
}

func TestNPMLockParser_V1Fallback(t *testing.T) {
	content := []byte(`{
  "lockfileVersion": 1,
  "dependencies": {
    "left-pad": {"version": "1.3.0"},
    "mocha": {"version": "10.2.0", "dev": true}
  }
}`)

	entries, err := (&npmLockParser{}).Parse("package-lock.json", content)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "left-pad", entries[0].Name)
	assert.Equal(t, "1.3.0", entries[0].Version)
	assert.Equal(t, domain.KindDev, entries[1].Kind)
}

func TestNPMLockParser_NestedAndScoped(t *testing.T) {
	content := []byte(`{
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "demo"},
    "node_modules/@scope/pkg": {"version": "2.0.0", "dev": true},
    "node_modules/a/node_modules/b": {"version": "0.1.0"}
  }
}`)

	entries, err := (&npmLockParser{}).Parse("package-lock.json", content)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "@scope/pkg", entries[0].Name)
	assert.Equal(t, domain.KindDev, entries[0].Kind)
	assert.Equal(t, "b", entries[1].Name, "nested installs resolve to the innermost package name")
}

func TestSplitRequirement(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedName    string
		expectedVersion string
		expectOK        bool
	}{
		{name: "pinned", input: "requests==2.31.0", expectedName: "requests", expectedVersion: "==2.31.0", expectOK: true},
		{name: "range", input: "django>=4.2,<5", expectedName: "django", expectedVersion: ">=4.2,<5", expectOK: true},
		{name: "bare", input: "numpy", expectedName: "numpy", expectedVersion: "", expectOK: true},
		{name: "extras", input: "uvicorn[standard]>=0.23", expectedName: "uvicorn", expectedVersion: ">=0.23", expectOK: true},
		{name: "marker stripped", input: "tomli>=1.1.0; python_version < '3.11'", expectedName: "tomli", expectedVersion: ">=1.1.0", expectOK: true},
		{name: "dotted name", input: "zope.interface==6.0", expectedName: "zope.interface", expectedVersion: "==6.0", expectOK: true},
		{name: "garbage", input: "=== nope", expectOK: false},
		{name: "empty", input: "   ", expectOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name, version, ok := splitRequirement(tc.input)
			assert.Equal(t, tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(t, tc.expectedName, name)
				assert.Equal(t, tc.expectedVersion, version)
			}
		})
	}
}
