// Package triage classifies issues into a category and priority using
// weighted keyword matches and structural cues from the issue text.
package triage

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// Field weights reflect how strongly each part of an issue signals its
// category. Keyword points per category are capped so a single repeated
// word cannot drown out everything else.
const (
	titleWeight   = 3.0
	bodyWeight    = 1.0
	commentWeight = 0.5
	keywordCap    = 6.0

	labelBonus      = 5.0
	stackTraceBonus = 4.0
	reproduceBonus  = 2.0
	proposalBonus   = 2.0
)

var (
	stackTracePattern = regexp.MustCompile(`(?m)(^\s+at\s+\S+\(.*\)\s*$)|(Traceback \(most recent call last\))|(^panic: )|(goroutine \d+ \[)|(^\s*File "[^"]+", line \d+)`)
	reproducePattern  = regexp.MustCompile(`(?i)steps to reproduce`)
	proposalPattern   = regexp.MustCompile(`(?i)(would be (nice|great|useful))|(\buse case\b)`)
)

// Input carries the issue fields the classifier inspects.
type Input struct {
	Title    string
	Body     string
	Comments []string
	Labels   []string
}

// Classification is the outcome for a single issue.
type Classification struct {
	Category        domain.Category
	Priority        domain.Priority
	Confidence      float64
	Rationale       []string
	SuggestedLabels []string
}

type compiledKeyword struct {
	text string
	re   *regexp.Regexp
}

type compiledCategory struct {
	category domain.Category
	keywords []compiledKeyword
	labels   map[string]bool
}

// Classifier applies a compiled rule set. It is safe for concurrent use.
type Classifier struct {
	categories   []compiledCategory
	priorityHigh []compiledKeyword
	priorityLow  []compiledKeyword
}

// NewClassifier compiles the rule set. Keywords match on word boundaries,
// case-insensitively, so "how to" does not fire inside "showtime".
func NewClassifier(rules Rules) (*Classifier, error) {
	c := &Classifier{}
	for _, rule := range rules.Categories {
		compiled := compiledCategory{
			category: rule.Category,
			labels:   make(map[string]bool, len(rule.Labels)),
		}
		for _, kw := range rule.Keywords {
			re, err := compileKeyword(kw)
			if err != nil {
				return nil, err
			}
			compiled.keywords = append(compiled.keywords, compiledKeyword{text: kw, re: re})
		}
		for _, label := range rule.Labels {
			compiled.labels[strings.ToLower(label)] = true
		}
		c.categories = append(c.categories, compiled)
	}
	var err error
	if c.priorityHigh, err = compileKeywords(rules.Priority.High); err != nil {
		return nil, err
	}
	if c.priorityLow, err = compileKeywords(rules.Priority.Low); err != nil {
		return nil, err
	}
	return c, nil
}

func compileKeyword(kw string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile triage keyword %q: %w", kw, err)
	}
	return re, nil
}

func compileKeywords(kws []string) ([]compiledKeyword, error) {
	out := make([]compiledKeyword, 0, len(kws))
	for _, kw := range kws {
		re, err := compileKeyword(kw)
		if err != nil {
			return nil, err
		}
		out = append(out, compiledKeyword{text: kw, re: re})
	}
	return out, nil
}

// categoryPrecedence breaks score ties. An issue that reads equally as a
// bug and a question is more useful triaged as a bug.
var categoryPrecedence = []domain.Category{
	domain.CategoryBug,
	domain.CategoryFeature,
	domain.CategoryDocumentation,
	domain.CategoryQuestion,
	domain.CategoryOther,
}

// Classify scores the issue against every category and derives a priority.
// The same input always yields the same result.
func (c *Classifier) Classify(in Input) Classification {
	scores := make(map[domain.Category]float64, len(c.categories))
	var rationale []string
	note := func(format string, args ...interface{}) {
		rationale = append(rationale, fmt.Sprintf(format, args...))
	}

	comments := strings.Join(in.Comments, "\n")
	for _, cat := range c.categories {
		var pts float64
		for _, kw := range cat.keywords {
			if kw.re.MatchString(in.Title) {
				pts += titleWeight
				note("title matches %s keyword %q", cat.category, kw.text)
			}
			if kw.re.MatchString(in.Body) {
				pts += bodyWeight
				note("body matches %s keyword %q", cat.category, kw.text)
			}
			if comments != "" && kw.re.MatchString(comments) {
				pts += commentWeight
				note("comments match %s keyword %q", cat.category, kw.text)
			}
		}
		if pts > keywordCap {
			pts = keywordCap
		}
		for _, label := range in.Labels {
			if cat.labels[strings.ToLower(label)] {
				pts += labelBonus
				note("existing label %q marks the issue as %s", label, cat.category)
			}
		}
		scores[cat.category] = pts
	}

	bodyAndComments := in.Body + "\n" + comments
	if stackTracePattern.MatchString(bodyAndComments) {
		scores[domain.CategoryBug] += stackTraceBonus
		note("stack trace detected")
	}
	if reproducePattern.MatchString(in.Body) {
		scores[domain.CategoryBug] += reproduceBonus
		note("reproduction steps provided")
	}
	if proposalPattern.MatchString(in.Title + "\n" + in.Body) {
		scores[domain.CategoryFeature] += proposalBonus
		note("phrased as a proposal")
	}

	var total float64
	for _, pts := range scores {
		total += pts
	}

	category := domain.CategoryOther
	confidence := 0.0
	if total > 0 {
		best := maxScore(scores)
		for _, cand := range categoryPrecedence {
			if pts, ok := scores[cand]; ok && pts == best && pts > 0 {
				category = cand
				confidence = pts / total
				break
			}
		}
	} else {
		rationale = nil
	}

	priority, priorityNotes := c.priority(in, category)
	rationale = append(rationale, priorityNotes...)

	return Classification{
		Category:        category,
		Priority:        priority,
		Confidence:      confidence,
		Rationale:       rationale,
		SuggestedLabels: suggestLabels(category, priority, in.Labels),
	}
}

func maxScore(scores map[domain.Category]float64) float64 {
	var max float64
	for _, pts := range scores {
		if pts > max {
			max = pts
		}
	}
	return max
}

// priorityLabels are existing label names that settle the priority on
// their own, without any keyword evidence.
var (
	highPriorityLabels = map[string]bool{
		"critical": true, "urgent": true, "p0": true, "p1": true,
		"security": true, "priority: high": true,
	}
	lowPriorityLabels = map[string]bool{
		"p3": true, "low": true, "minor": true, "priority: low": true,
	}
)

func (c *Classifier) priority(in Input, category domain.Category) (domain.Priority, []string) {
	var notes []string
	for _, label := range in.Labels {
		if highPriorityLabels[strings.ToLower(label)] {
			return domain.PriorityHigh, []string{fmt.Sprintf("existing label %q marks the issue high priority", label)}
		}
	}
	text := in.Title + "\n" + in.Body
	for _, kw := range c.priorityHigh {
		if kw.re.MatchString(text) {
			return domain.PriorityHigh, []string{fmt.Sprintf("high priority keyword %q", kw.text)}
		}
	}
	for _, label := range in.Labels {
		if lowPriorityLabels[strings.ToLower(label)] {
			return domain.PriorityLow, []string{fmt.Sprintf("existing label %q marks the issue low priority", label)}
		}
	}
	for _, kw := range c.priorityLow {
		if kw.re.MatchString(text) {
			return domain.PriorityLow, []string{fmt.Sprintf("low priority keyword %q", kw.text)}
		}
	}
	switch category {
	case domain.CategoryBug, domain.CategoryFeature:
		return domain.PriorityMedium, notes
	default:
		return domain.PriorityLow, notes
	}
}

// suggestLabels proposes the category and priority as labels, skipping any
// the issue already carries (compared case-insensitively).
func suggestLabels(category domain.Category, priority domain.Priority, existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, label := range existing {
		have[strings.ToLower(label)] = true
	}
	candidates := []string{
		string(category),
		"priority: " + string(priority),
	}
	var out []string
	for _, label := range candidates {
		if !have[strings.ToLower(label)] {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}
