package gitlab

import (
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/graphql"
)

// Selector chooses which projects are queried and optionally narrows
// their packages to one name.
type Selector struct {
	Namespace   string // group or user path, may contain "/"
	Project     string // project name within Namespace
	PackageName string // "vendor/package"; empty means all packages
}

// Validate rejects a project without a namespace.
func (s Selector) Validate() error {
	if s.Project != "" && s.Namespace == "" {
		return gwerrors.New(gwerrors.ErrCodeInvalidInput, "project %q requires a namespace", s.Project)
	}
	return nil
}

// Single reports whether s names exactly one project.
func (s Selector) Single() bool {
	return s.Namespace != "" && s.Project != ""
}

// FullPath returns "namespace/project" for a single-project selector and
// "" otherwise.
func (s Selector) FullPath() string {
	if !s.Single() {
		return ""
	}
	return s.Namespace + "/" + s.Project
}

// Scope describes s for logs and hooks.
func (s Selector) Scope() string {
	switch {
	case s.Single():
		return s.FullPath()
	case s.Namespace != "":
		return s.Namespace
	default:
		return "*"
	}
}

// query returns the operation for s and its initial variables.
func (s Selector) query() (graphql.Operation, map[string]any, error) {
	if err := s.Validate(); err != nil {
		return graphql.Operation{}, nil, err
	}

	vars := map[string]any{
		varAfterProject: nil,
		varAfterPackage: nil,
		varPackageName:  nil,
	}
	if s.PackageName != "" {
		vars[varPackageName] = s.PackageName
	}

	switch {
	case s.Single():
		vars[varFullPath] = s.FullPath()
		return ProjectQuery, vars, nil
	case s.Namespace != "":
		vars[varNamespace] = s.Namespace
		return NamespaceProjectsQuery, vars, nil
	default:
		return ProjectsQuery, vars, nil
	}
}
