package gitlab

// PageInfo is the cursor state of a GraphQL connection.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ComposerJSON holds the composer.json fields GitLab indexes for a package.
// A nil field was not declared by the package.
type ComposerJSON struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Version *string `json:"version"`
	License *string `json:"license"`
}

// ComposerMetadata is the registry metadata of a Composer package.
type ComposerMetadata struct {
	TargetSha    string        `json:"targetSha"`
	ComposerJSON *ComposerJSON `json:"composerJson"`
}

// Package is a single published package version.
type Package struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Metadata *ComposerMetadata `json:"metadata"`
}

// TargetSha returns the commit the package was published from, or ""
// when GitLab returned no Composer metadata.
func (p Package) TargetSha() string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata.TargetSha
}

// PackageConnection is the first page of a project's packages.
type PackageConnection struct {
	Nodes    []Package `json:"nodes"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Project is a GitLab project and its Composer packages.
type Project struct {
	ID            string            `json:"id"`
	FullPath      string            `json:"fullPath"`
	HTTPURLToRepo string            `json:"httpUrlToRepo"`
	WebURL        string            `json:"webUrl"`
	Packages      PackageConnection `json:"packages"`
}

// NumericID returns the integer behind the project's global ID.
func (p Project) NumericID() (int64, error) {
	return NumericID(p.ID)
}

// ProjectConnection is one page of projects.
type ProjectConnection struct {
	Nodes    []Project `json:"nodes"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Blob is a file in a project's repository. RawBlob is nil when GitLab
// returned the path without content.
type Blob struct {
	Path    string  `json:"path"`
	RawBlob *string `json:"rawBlob"`
}

// projectsPage is the data of one response to a project query shape.
// Exactly one field is set for a well-formed response; all are nil when
// the requested project or namespace does not exist.
type projectsPage struct {
	Project   *Project           `json:"project"`
	Projects  *ProjectConnection `json:"projects"`
	Namespace *struct {
		Projects *ProjectConnection `json:"projects"`
	} `json:"namespace"`
}

// connection returns the project connection of the page, whether it came
// from the top-level projects field or from a namespace.
func (p *projectsPage) connection() *ProjectConnection {
	if p.Namespace != nil && p.Namespace.Projects != nil {
		return p.Namespace.Projects
	}
	return p.Projects
}

// blobsData is the data of a BlobsQuery response.
type blobsData struct {
	Project *struct {
		ID         string `json:"id"`
		FullPath   string `json:"fullPath"`
		Repository *struct {
			Blobs struct {
				Nodes []Blob `json:"nodes"`
			} `json:"blobs"`
		} `json:"repository"`
	} `json:"project"`
}
