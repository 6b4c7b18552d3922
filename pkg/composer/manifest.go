package composer

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-gateway/pkg/cache"
	"github.com/matzehuels/composer-gateway/pkg/integrations"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

// Manifest is a decoded composer.json object.
type Manifest map[string]any

// BlobFetcher reads raw files from a project's repository.
type BlobFetcher interface {
	ProjectBlobs(ctx context.Context, fullPath string, paths []string, ref string) (map[string]*gitlab.Blob, error)
}

// ManifestResolver reads composer.json at a commit, read-through on a cache.
type ManifestResolver struct {
	blobs  BlobFetcher
	cache  cache.Cache
	logger *log.Logger
}

// NewManifestResolver creates a resolver that fetches through blobs and
// caches in backend. A nil backend disables caching; a nil logger uses
// log.Default().
func NewManifestResolver(blobs BlobFetcher, backend cache.Cache, logger *log.Logger) *ManifestResolver {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ManifestResolver{blobs: blobs, cache: backend, logger: logger}
}

// Resolve returns the composer.json of projectPath at sha, or nil when the
// file does not exist there or is not a JSON object. Both outcomes are
// cached forever; fetch errors are returned and not cached.
func (r *ManifestResolver) Resolve(ctx context.Context, projectPath, sha string) (Manifest, error) {
	key := cache.ManifestKey(projectPath, sha)

	var m Manifest
	hit, err := integrations.Cached(ctx, r.cache, "manifest", key, &m, func() error {
		blobs, err := r.blobs.ProjectBlobs(ctx, projectPath, []string{cache.ManifestFile}, sha)
		if err != nil {
			return err
		}
		m = decodeManifest(blobs[cache.ManifestFile])
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("resolved manifest", "key", key, "cached", hit, "found", m != nil)
	return m, nil
}

func decodeManifest(b *gitlab.Blob) Manifest {
	if b == nil || b.RawBlob == nil {
		return nil
	}
	var m Manifest
	if err := json.Unmarshal([]byte(*b.RawBlob), &m); err != nil {
		return nil
	}
	return m
}
