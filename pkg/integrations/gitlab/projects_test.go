package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/graphql"
	"github.com/matzehuels/composer-gateway/pkg/integrations"
)

func TestFindProjectsPaginates(t *testing.T) {
	const pages = 3
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		hasNext := n < pages-1
		cursor := fmt.Sprintf("cursor-%d", n)
		return data(map[string]any{
			"projects": connection(hasNext, cursor,
				project(fmt.Sprintf("gid://gitlab/Project/%d", n*2), fmt.Sprintf("g/p%d", n*2)),
				project(fmt.Sprintf("gid://gitlab/Project/%d", n*2+1), fmt.Sprintf("g/p%d", n*2+1)),
			),
		})
	})

	projects, err := client.FindProjectsWithPackages(context.Background(), Selector{})
	require.NoError(t, err)
	require.Equal(t, pages, fake.calls())

	var paths []string
	for _, p := range projects {
		paths = append(paths, p.FullPath)
	}
	require.Equal(t, []string{"g/p0", "g/p1", "g/p2", "g/p3", "g/p4", "g/p5"}, paths)

	require.Nil(t, fake.request(0).Variables[varAfterProject])
	require.Equal(t, "cursor-0", fake.request(1).Variables[varAfterProject])
	require.Equal(t, "cursor-1", fake.request(2).Variables[varAfterProject])
}

func TestFindProjectsNamespace(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{
			"namespace": map[string]any{
				"projects": connection(false, "",
					project("gid://gitlab/Project/1", "acme/widgets", composerPackage("acme/widgets", "1.0.0", "abc123")),
					project("gid://gitlab/Project/2", "acme/sub/gadgets"),
				),
			},
		})
	})

	projects, err := client.FindProjectsWithPackages(context.Background(), Selector{Namespace: "acme", PackageName: "acme/widgets"})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, 1, fake.calls())

	req := fake.request(0)
	require.Equal(t, opNamespaceProjects, req.OperationName)
	require.Equal(t, "acme", req.Variables[varNamespace])
	require.Equal(t, "acme/widgets", req.Variables[varPackageName])

	pkg := projects[0].Packages.Nodes[0]
	require.Equal(t, "abc123", pkg.TargetSha())
	require.Equal(t, "library", *pkg.Metadata.ComposerJSON.Type)
	require.Nil(t, pkg.Metadata.ComposerJSON.License)
}

func TestFindProjectsSingleProjectCallsOnce(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		p := project("gid://gitlab/Project/42", "acme/widgets", composerPackage("acme/widgets", "1.0.0", "abc123"))
		p["packages"].(map[string]any)["pageInfo"] = map[string]any{"hasNextPage": true, "endCursor": "more"}
		return data(map[string]any{
			"project":  p,
			"projects": connection(true, "ignored"),
		})
	})

	projects, err := client.FindProjectsWithPackages(context.Background(), Selector{Namespace: "acme", Project: "widgets"})
	require.NoError(t, err)
	require.Equal(t, 1, fake.calls())
	require.Len(t, projects, 1)
	require.Equal(t, "acme/widgets", projects[0].FullPath)
	require.True(t, projects[0].Packages.PageInfo.HasNextPage)

	req := fake.request(0)
	require.Equal(t, opProject, req.OperationName)
	require.Equal(t, "acme/widgets", req.Variables[varFullPath])
}

func TestFindProjectsMissingProject(t *testing.T) {
	client, _ := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"project": nil})
	})

	projects, err := client.FindProjectsWithPackages(context.Background(), Selector{Namespace: "acme", Project: "gone"})
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestFindProjectsMissingNamespace(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"namespace": nil})
	})

	projects, err := client.FindProjectsWithPackages(context.Background(), Selector{Namespace: "gone"})
	require.NoError(t, err)
	require.Empty(t, projects)
	require.Equal(t, 1, fake.calls())
}

func TestFindProjectsInvalidSelectorMakesNoRequest(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		t.Error("unexpected request")
		return nil
	})

	_, err := client.FindProjectsWithPackages(context.Background(), Selector{Project: "widgets"})
	require.True(t, gwerrors.Is(err, gwerrors.ErrCodeInvalidInput))
	require.Zero(t, fake.calls())
}

func TestFindProjectsGraphQLErrorAborts(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		if n == 0 {
			return data(map[string]any{"projects": connection(true, "c1", project("gid://gitlab/Project/1", "a/b"))})
		}
		return map[string]any{
			"data":   nil,
			"errors": []map[string]any{{"message": "Field 'packages' doesn't exist"}},
		}
	})

	projects, err := client.FindProjectsWithPackages(context.Background(), Selector{})
	require.Nil(t, projects)
	require.True(t, gwerrors.Is(err, gwerrors.ErrCodeUpstream), "got %v", err)
	require.Contains(t, err.Error(), "doesn't exist")
	require.Equal(t, 2, fake.calls())
}

func TestFindProjectsMissingCursor(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"projects": connection(true, "")})
	})

	_, err := client.FindProjectsWithPackages(context.Background(), Selector{})
	require.True(t, gwerrors.Is(err, gwerrors.ErrCodeUpstream), "got %v", err)
	require.Equal(t, 1, fake.calls())
}

func TestFindProjectsStuckCursor(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"projects": connection(true, "same")})
	})

	_, err := client.FindProjectsWithPackages(context.Background(), Selector{})
	require.True(t, gwerrors.Is(err, gwerrors.ErrCodeUpstream), "got %v", err)
	require.Equal(t, 2, fake.calls())
}

func TestFindProjectsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(integrations.NewClient(server.Client(), nil), server.URL)
	_, err := client.FindProjectsWithPackages(context.Background(), Selector{Namespace: "acme"})
	require.True(t, gwerrors.Is(err, gwerrors.ErrCodeUnauthorized), "got %v", err)
}

func TestFindProjectsForwardsHeaders(t *testing.T) {
	client, fake := newFakeGraphQL(t, func(n int, req graphql.Request) any {
		return data(map[string]any{"projects": connection(false, "")})
	})

	client = client.WithHeaders(map[string]string{
		"Authorization": "Bearer secret",
		"Private-Token": "",
	})
	_, err := client.FindProjectsWithPackages(context.Background(), Selector{})
	require.NoError(t, err)

	h := fake.headers[0]
	require.Equal(t, "Bearer secret", h.Get("Authorization"))
	require.Equal(t, []string{""}, h.Values("Private-Token"))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil, "")
	require.Equal(t, DefaultInstanceURL, c.InstanceURL())
	require.Equal(t, "https://gitlab.com/api/graphql", c.Endpoint())

	c = NewClient(nil, "https://gitlab.example.com/")
	require.Equal(t, "https://gitlab.example.com", c.InstanceURL())
}
