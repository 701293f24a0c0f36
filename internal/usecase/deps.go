package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/gateway"
	"github.com/Amama-Fatima/github-insights/internal/manifest"
)

// DependencyService extracts a repository's declared dependencies from the
// manifests found in its tree.
type DependencyService struct {
	fetcher  gateway.Fetcher
	registry *manifest.Registry
	logger   *log.Logger
	now      func() time.Time
}

// NewDependencyService creates a new DependencyService instance.
func NewDependencyService(fetcher gateway.Fetcher, logger *log.Logger) *DependencyService {
	return &DependencyService{
		fetcher:  fetcher,
		registry: manifest.NewRegistry(),
		logger:   logger,
		now:      time.Now,
	}
}

// AnalyzeDependencies scans ref for manifest files and parses out the
// declared dependencies. An empty ref selects the default branch.
func (s *DependencyService) AnalyzeDependencies(ctx context.Context, owner, repo, ref string) (domain.DependencyReport, error) {
	if err := domain.ValidateRepoRef(owner, repo); err != nil {
		return domain.DependencyReport{}, err
	}
	s.logger.Printf("Usecase: Analyzing dependencies of %s/%s...", owner, repo)

	if ref == "" {
		repository, err := s.fetcher.FetchRepository(ctx, owner, repo)
		if err != nil {
			return domain.DependencyReport{}, err
		}
		ref = repository.GetDefaultBranch()
	}

	tree, err := s.fetcher.FetchTree(ctx, owner, repo, ref)
	if err != nil {
		return domain.DependencyReport{}, err
	}

	manifests, entries, warnings, err := s.scanTree(ctx, owner, repo, blobPaths(tree))
	if err != nil {
		return domain.DependencyReport{}, err
	}
	s.logger.Printf("Usecase: Parsed %d dependencies from %d manifests.", len(entries), len(manifests))

	return domain.DependencyReport{
		Owner:         owner,
		Repo:          repo,
		ManifestPaths: manifests,
		Entries:       entries,
		Warnings:      warnings,
		GeneratedAt:   s.now().UTC(),
	}, nil
}

// scanTree detects the manifests in a file listing, fetches their content
// concurrently, and parses them. A manifest that disappears between the
// tree listing and the content fetch degrades to a warning; any other
// fetch failure aborts the scan.
func (s *DependencyService) scanTree(ctx context.Context, owner, repo string, paths []string) (manifests []string, entries []domain.DependencyEntry, warnings []domain.ParseWarning, err error) {
	manifests = s.registry.Detect(paths)

	files := make([]manifest.File, len(manifests))
	missing := make([]bool, len(manifests))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range manifests {
		eg.Go(func() error {
			content, fetchErr := s.fetcher.FetchFileContent(egCtx, owner, repo, p)
			if fetchErr != nil {
				if errors.Is(fetchErr, domain.ErrNotFound) {
					missing[i] = true
					return nil
				}
				return fetchErr
			}
			files[i] = manifest.File{Path: p, Content: []byte(content)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, nil, err
	}

	present := files[:0]
	for i, file := range files {
		if missing[i] {
			warnings = append(warnings, domain.ParseWarning{
				Path:   manifests[i],
				Reason: "file listed in tree but no longer present",
			})
			continue
		}
		present = append(present, file)
	}

	entries, parseWarnings := s.registry.Scan(present)
	warnings = append(warnings, parseWarnings...)
	return manifests, entries, warnings, nil
}

// blobPaths flattens a git tree into the paths of its regular files.
func blobPaths(tree *github.Tree) []string {
	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}
	return paths
}
