package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// fileSnapshot is the JSON layout of a tracker snapshot file.
type fileSnapshot struct {
	Issues []schema.Issue        `json:"issues"`
	Groups []schema.ProjectGroup `json:"groups,omitempty"`
}

// FileSource serves issues from a JSON snapshot. It backs tests,
// examples, and runs on machines without database access.
type FileSource struct {
	path     string
	source   schema.Source
	snapshot fileSnapshot
}

var _ contract.IssueSource = &FileSource{} // Compile-time check

// NewFileSource loads a snapshot file into memory.
func NewFileSource(path string, source schema.Source) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	for _, issue := range snapshot.Issues {
		if err := issue.History.Validate(); err != nil {
			return nil, fmt.Errorf("issue %s: %w", issue.Key, err)
		}
	}

	return &FileSource{path: path, source: source, snapshot: snapshot}, nil
}

// FetchIssues filters the snapshot by project and issue type. An empty
// project matches every project in the file.
func (f *FileSource) FetchIssues(_ context.Context, project, issueType string) ([]schema.Issue, error) {
	profile, err := schema.GetProfile(f.source, issueType)
	if err != nil {
		return nil, err
	}

	var issues []schema.Issue
	for _, issue := range f.snapshot.Issues {
		if project != "" && issue.Project != project {
			continue
		}
		if !lo.Contains(profile.QueryTypes, issue.Type) {
			continue
		}
		issues = append(issues, issue)
	}
	return applyConventions(f.source, issues), nil
}

// ActiveProjects lists the distinct project keys in the snapshot.
func (f *FileSource) ActiveProjects(_ context.Context) ([]string, error) {
	projects := lo.Uniq(lo.Map(f.snapshot.Issues, func(issue schema.Issue, _ int) string {
		return issue.Project
	}))
	slices.Sort(projects)
	return projects, nil
}

// ProjectGroups returns the snapshot's groups block. Without one, each
// distinct project key prefix becomes its own group, so a file holding
// GRND-A and GRND-B yields a single GRND group.
func (f *FileSource) ProjectGroups(ctx context.Context) ([]schema.ProjectGroup, error) {
	if len(f.snapshot.Groups) > 0 {
		return f.snapshot.Groups, nil
	}

	projects, err := f.ActiveProjects(ctx)
	if err != nil {
		return nil, err
	}

	var groups []schema.ProjectGroup
	byPrefix := make(map[string]int)
	for _, project := range projects {
		prefix, _, _ := strings.Cut(project, "-")
		idx, ok := byPrefix[prefix]
		if !ok {
			idx = len(groups)
			byPrefix[prefix] = idx
			groups = append(groups, schema.ProjectGroup{Name: prefix})
		}
		groups[idx].Projects = append(groups[idx].Projects, project)
	}
	return groups, nil
}

// Ping verifies the snapshot file is still readable.
func (f *FileSource) Ping(_ context.Context) error {
	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("snapshot file %s is not accessible: %w", f.path, err)
	}
	return nil
}

// Close is a no-op for file sources.
func (f *FileSource) Close() error {
	return nil
}
