package composer

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-gateway/pkg/cache"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
	"github.com/matzehuels/composer-gateway/pkg/observability"
)

// ProjectSource lists GitLab projects with their packages and reads their
// files. *gitlab.Client implements it.
type ProjectSource interface {
	BlobFetcher
	InstanceURL() string
	FindProjectsWithPackages(ctx context.Context, sel gitlab.Selector) ([]gitlab.Project, error)
}

var _ ProjectSource = (*gitlab.Client)(nil)

// Formatter builds repository documents from a ProjectSource.
//
// A Formatter holds no per-request state; it may be shared across
// goroutines as long as its ProjectSource is.
type Formatter struct {
	source    ProjectSource
	manifests *ManifestResolver
	logger    *log.Logger
}

// NewFormatter creates a formatter reading from src and caching manifests
// in backend. A nil backend disables caching; a nil logger uses
// log.Default().
func NewFormatter(src ProjectSource, backend cache.Cache, logger *log.Logger) *Formatter {
	if logger == nil {
		logger = log.Default()
	}
	return &Formatter{
		source:    src,
		manifests: NewManifestResolver(src, backend, logger),
		logger:    logger,
	}
}

// entry is a package version together with the project that published it.
type entry struct {
	project *gitlab.Project
	pkg     *gitlab.Package
}

// BuildPackages fetches the projects chosen by sel and returns their
// packages as a repository document.
func (f *Formatter) BuildPackages(ctx context.Context, sel gitlab.Selector) (repo *Repository, err error) {
	hooks := observability.Build()
	scope := sel.Scope()
	start := time.Now()
	hooks.OnBuildStart(ctx, scope)

	var projects []gitlab.Project
	defer func() {
		versions := 0
		if repo != nil {
			versions = repo.Versions()
		}
		hooks.OnBuildComplete(ctx, scope, len(projects), versions, time.Since(start), err)
	}()

	projects, err = f.source.FindProjectsWithPackages(ctx, sel)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("fetched projects", "scope", scope, "projects", len(projects))

	repo = NewRepository()
	for _, e := range group(projects) {
		d, err := f.describe(ctx, e)
		if err != nil {
			return nil, err
		}
		repo.Add(d)
		if dist, ok := d.Dist(); ok {
			source, _ := d.Source()
			f.logger.Debug("added version", "package", d.Name(), "version", d.Version(), "reference", source.Reference, "dist", dist.URL)
		}
	}
	return repo, nil
}

// group flattens the packages of all projects and keeps the last entry
// for each (name, version), in first-seen order.
func group(projects []gitlab.Project) []entry {
	type key struct{ name, version string }

	index := make(map[key]int)
	var entries []entry
	for i := range projects {
		p := &projects[i]
		for j := range p.Packages.Nodes {
			pkg := &p.Packages.Nodes[j]
			k := key{pkg.Name, pkg.Version}
			e := entry{project: p, pkg: pkg}
			if at, ok := index[k]; ok {
				entries[at] = e
				continue
			}
			index[k] = len(entries)
			entries = append(entries, e)
		}
	}
	return entries
}

// describe merges one package version with its manifest.
func (f *Formatter) describe(ctx context.Context, e entry) (Descriptor, error) {
	pkg, project := e.pkg, e.project
	sha := pkg.TargetSha()

	d := make(Descriptor)
	if sha != "" {
		manifest, err := f.manifests.Resolve(ctx, project.FullPath, sha)
		if err != nil {
			return nil, err
		}
		maps.Copy(d, manifest)
	}

	d["name"] = pkg.Name
	d["version"] = pkg.Version
	if pkg.Metadata != nil && pkg.Metadata.ComposerJSON != nil {
		cj := pkg.Metadata.ComposerJSON
		if cj.Type != nil {
			d["type"] = *cj.Type
		}
		if cj.License != nil {
			d["license"] = *cj.License
		}
	}

	id, err := project.NumericID()
	if err != nil {
		return nil, err
	}
	d["source"] = Source{
		Type:      "git",
		URL:       project.HTTPURLToRepo,
		Reference: sha,
	}
	d["dist"] = Dist{
		Type:      "zip",
		URL:       ArchiveURL(f.source.InstanceURL(), id, pkg.Name, sha),
		Reference: sha,
		Shasum:    "",
	}
	return d, nil
}

// ArchiveURL returns GitLab's Composer archive endpoint for a package
// version.
func ArchiveURL(instanceURL string, projectID int64, name, sha string) string {
	return fmt.Sprintf("%s/api/v4/projects/%d/packages/composer/archives/%s.zip?sha=%s", instanceURL, projectID, name, sha)
}
