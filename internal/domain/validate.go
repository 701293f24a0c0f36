package domain

import (
	"regexp"
	"strings"
)

// GitHub naming rules. Owner names (users and organizations) are
// alphanumeric with inner hyphens, at most 39 characters. Repository names
// additionally allow underscores and dots, at most 100 characters.
var (
	ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	repoPattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

const (
	maxOwnerLength = 39
	maxRepoLength  = 100
)

// ValidateOwner checks a user or organization name against GitHub's naming
// rules. It returns an *InvalidInputError so callers can reject bad input
// before spending a network call on it.
func ValidateOwner(owner string) error {
	if owner == "" {
		return &InvalidInputError{Field: "owner", Reason: "must not be empty"}
	}
	if len(owner) > maxOwnerLength {
		return &InvalidInputError{Field: "owner", Reason: "must be at most 39 characters"}
	}
	if !ownerPattern.MatchString(owner) {
		return &InvalidInputError{Field: "owner", Reason: "must be alphanumeric with inner hyphens"}
	}
	return nil
}

// ValidateRepo checks a repository name against GitHub's naming rules.
func ValidateRepo(repo string) error {
	if repo == "" {
		return &InvalidInputError{Field: "repo", Reason: "must not be empty"}
	}
	if len(repo) > maxRepoLength {
		return &InvalidInputError{Field: "repo", Reason: "must be at most 100 characters"}
	}
	if repo == "." || repo == ".." {
		return &InvalidInputError{Field: "repo", Reason: "must not be a relative path"}
	}
	if !repoPattern.MatchString(repo) {
		return &InvalidInputError{Field: "repo", Reason: "may only contain alphanumerics, hyphens, underscores, and dots"}
	}
	return nil
}

// ValidateRepoRef validates an "owner/repo" pair together.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// ValidateIssueNumber checks that an issue or pull request number is usable.
func ValidateIssueNumber(number int) error {
	if number <= 0 {
		return &InvalidInputError{Field: "number", Reason: "must be a positive integer"}
	}
	return nil
}

// ValidateWindowDays checks an analysis window length.
func ValidateWindowDays(days int) error {
	if days <= 0 {
		return &InvalidInputError{Field: "window_days", Reason: "must be a positive number of days"}
	}
	return nil
}

// SanitizeQueryTerm strips characters that would change the meaning of a
// GitHub search qualifier when user input is concatenated into a query.
func SanitizeQueryTerm(term string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', ':', ' ', '\t', '\n':
			return -1
		}
		return r
	}, term)
}
