package gitlab

import (
	"context"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
)

// ProjectBlobs fetches paths from the repository of the project at
// fullPath, at ref (the default branch when ref is empty).
//
// The result has one entry per requested path. The entry is nil when the
// file does not exist at ref or the repository is empty. A project that
// does not exist, or is not visible to the caller, is a NOT_FOUND error.
func (c *Client) ProjectBlobs(ctx context.Context, fullPath string, paths []string, ref string) (map[string]*Blob, error) {
	vars := map[string]any{
		varFullPath: fullPath,
		varPaths:    paths,
		varRef:      nil,
	}
	if ref != "" {
		vars[varRef] = ref
	}

	var data blobsData
	if err := c.run(ctx, BlobsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Project == nil {
		return nil, gwerrors.New(gwerrors.ErrCodeNotFound, "project %q not found", fullPath)
	}

	found := make(map[string]*Blob)
	if repo := data.Project.Repository; repo != nil {
		for i := range repo.Blobs.Nodes {
			b := &repo.Blobs.Nodes[i]
			if _, ok := found[b.Path]; !ok {
				found[b.Path] = b
			}
		}
	}

	blobs := make(map[string]*Blob, len(paths))
	for _, p := range paths {
		blobs[p] = found[p]
	}
	return blobs, nil
}
