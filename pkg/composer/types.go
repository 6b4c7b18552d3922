package composer

import "encoding/json"

// Repository is the document served to Composer.
type Repository struct {
	Packages map[string]map[string]Descriptor `json:"packages"`
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{Packages: make(map[string]map[string]Descriptor)}
}

// Add stores d under its name and version, replacing any earlier
// descriptor for the same pair.
func (r *Repository) Add(d Descriptor) {
	versions, ok := r.Packages[d.Name()]
	if !ok {
		versions = make(map[string]Descriptor)
		r.Packages[d.Name()] = versions
	}
	versions[d.Version()] = d
}

// Versions returns the number of package versions in r.
func (r *Repository) Versions() int {
	n := 0
	for _, versions := range r.Packages {
		n += len(versions)
	}
	return n
}

// Source points Composer at the package's git repository.
type Source struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

// Dist points Composer at a downloadable archive.
type Dist struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
	Shasum    string `json:"shasum"`
}

// Descriptor is one version of a package: the manifest fields merged with
// the fields derived from the registry.
type Descriptor map[string]any

// Name returns the descriptor's package name.
func (d Descriptor) Name() string {
	s, _ := d["name"].(string)
	return s
}

// Version returns the descriptor's version.
func (d Descriptor) Version() string {
	s, _ := d["version"].(string)
	return s
}

// Source returns the source block, if set.
func (d Descriptor) Source() (Source, bool) {
	s, ok := d["source"].(Source)
	return s, ok
}

// Dist returns the dist block, if set.
func (d Descriptor) Dist() (Dist, bool) {
	s, ok := d["dist"].(Dist)
	return s, ok
}

// MarshalJSON encodes the descriptor as a plain JSON object.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(d))
}
