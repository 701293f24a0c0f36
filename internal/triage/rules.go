package triage

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// CategoryRule declares the evidence for one category: keywords matched
// against the issue text and label names that mark the category outright.
type CategoryRule struct {
	Category domain.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
	Labels   []string        `yaml:"labels"`
}

// PriorityRules declares keywords that pull the priority up or down.
type PriorityRules struct {
	High []string `yaml:"high"`
	Low  []string `yaml:"low"`
}

// Rules is the full rule set driving classification. It is plain data so
// deployments can ship their own vocabulary without code changes.
type Rules struct {
	Categories []CategoryRule `yaml:"categories"`
	Priority   PriorityRules  `yaml:"priority"`
}

// DefaultRules returns the built-in vocabulary.
func DefaultRules() Rules {
	return Rules{
		Categories: []CategoryRule{
			{
				Category: domain.CategoryBug,
				Keywords: []string{
					"crash", "panic", "error", "exception", "broken",
					"fails", "failure", "regression", "segfault",
					"traceback", "stack trace", "stacktrace",
					"doesn't work", "not working", "null pointer",
				},
				Labels: []string{"bug", "kind/bug", "type: bug", "defect"},
			},
			{
				Category: domain.CategoryFeature,
				Keywords: []string{
					"feature", "feature request", "enhancement",
					"implement", "support for", "add support",
					"proposal", "improve", "idea",
				},
				Labels: []string{"enhancement", "feature", "kind/feature", "type: feature"},
			},
			{
				Category: domain.CategoryDocumentation,
				Keywords: []string{
					"docs", "documentation", "readme", "typo",
					"tutorial", "example", "guide", "changelog",
				},
				Labels: []string{"documentation", "docs", "kind/docs"},
			},
			{
				Category: domain.CategoryQuestion,
				Keywords: []string{
					"question", "how do i", "how to", "help",
					"clarify", "usage", "is it possible", "what is",
				},
				Labels: []string{"question", "help wanted", "support"},
			},
		},
		Priority: PriorityRules{
			High: []string{
				"crash", "data loss", "security", "vulnerability",
				"urgent", "critical", "production", "outage",
				"blocker", "blocking", "regression", "cve",
			},
			Low: []string{
				"typo", "minor", "cosmetic", "nice to have",
				"polish", "cleanup",
			},
		},
	}
}

// LoadRules parses a YAML rule set and validates the category names.
func LoadRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse triage rules: %w", err)
	}
	known := map[domain.Category]bool{
		domain.CategoryBug:           true,
		domain.CategoryFeature:       true,
		domain.CategoryDocumentation: true,
		domain.CategoryQuestion:      true,
		domain.CategoryOther:         true,
	}
	for _, rule := range rules.Categories {
		if !known[rule.Category] {
			return Rules{}, fmt.Errorf("triage rules reference unknown category %q", rule.Category)
		}
	}
	return rules, nil
}
