package gitlab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/graphql"
)

func blobsResponse(nodes ...map[string]any) any {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	return data(map[string]any{
		"project": map[string]any{
			"id":       "gid://gitlab/Project/42",
			"fullPath": "acme/widgets",
			"repository": map[string]any{
				"blobs": map[string]any{"nodes": nodes},
			},
		},
	})
}

func TestProjectBlobs(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return blobsResponse(map[string]any{"path": "composer.json", "rawBlob": `{"license":"MIT"}`})
	})

	blobs, err := client.ProjectBlobs(context.Background(), "acme/widgets", []string{"composer.json", "README.md"}, "abc123")
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	require.NotNil(t, blobs["composer.json"])
	require.Equal(t, `{"license":"MIT"}`, *blobs["composer.json"].RawBlob)
	require.Nil(t, blobs["README.md"])

	req := fake.request(0)
	require.Equal(t, opProjectBlobs, req.OperationName)
	require.Equal(t, "acme/widgets", req.Variables[varFullPath])
	require.Equal(t, []any{"composer.json", "README.md"}, req.Variables[varPaths])
	require.Equal(t, "abc123", req.Variables[varRef])
}

func TestProjectBlobsDefaultRef(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return blobsResponse()
	})

	blobs, err := client.ProjectBlobs(context.Background(), "acme/widgets", []string{"composer.json"}, "")
	require.NoError(t, err)
	require.Nil(t, blobs["composer.json"])
	require.Contains(t, fake.request(0).Variables, varRef)
	require.Nil(t, fake.request(0).Variables[varRef])
}

func TestProjectBlobsEmptyRepository(t *testing.T) {
	client, _ := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"project": map[string]any{"id": "gid://gitlab/Project/1", "fullPath": "a/b", "repository": nil}})
	})

	blobs, err := client.ProjectBlobs(context.Background(), "a/b", []string{"composer.json"}, "abc")
	require.NoError(t, err)
	require.Contains(t, blobs, "composer.json")
	require.Nil(t, blobs["composer.json"])
}

func TestProjectBlobsProjectNotFound(t *testing.T) {
	client, _ := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"project": nil})
	})

	_, err := client.ProjectBlobs(context.Background(), "a/missing", []string{"composer.json"}, "abc")
	require.True(t, gwerrors.Is(err, gwerrors.ErrCodeNotFound), "got %v", err)
}
