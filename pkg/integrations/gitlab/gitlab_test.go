package gitlab

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/matzehuels/composer-gateway/pkg/graphql"
	"github.com/matzehuels/composer-gateway/pkg/integrations"
)

// fakeGraphQL serves /api/graphql with respond and records every request.
type fakeGraphQL struct {
	mu       sync.Mutex
	requests []graphql.Request
	headers  []http.Header
	respond  func(n int, req graphql.Request) any
}

func (f *fakeGraphQL) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeGraphQL) request(i int) graphql.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func newFakeGraphQL(t *testing.T, respond func(n int, req graphql.Request) any) (*Client, *fakeGraphQL) {
	t.Helper()
	fake := &fakeGraphQL{respond: respond}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/graphql" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req graphql.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fake.mu.Lock()
		n := len(fake.requests)
		fake.requests = append(fake.requests, req)
		fake.headers = append(fake.headers, r.Header.Clone())
		fake.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(fake.respond(n, req))
	}))
	t.Cleanup(server.Close)

	api := integrations.NewClient(server.Client(), nil)
	return NewClient(api, server.URL+"/"), fake
}

func data(v any) map[string]any {
	return map[string]any{"data": v}
}

func project(id, fullPath string, packages ...map[string]any) map[string]any {
	return map[string]any{
		"id":            id,
		"fullPath":      fullPath,
		"httpUrlToRepo": "https://gitlab.example.com/" + fullPath + ".git",
		"webUrl":        "https://gitlab.example.com/" + fullPath,
		"packages": map[string]any{
			"nodes":    packages,
			"pageInfo": map[string]any{"hasNextPage": false, "endCursor": nil},
		},
	}
}

func composerPackage(name, version, sha string) map[string]any {
	return map[string]any{
		"id":      "gid://gitlab/Packages::Package/1",
		"name":    name,
		"version": version,
		"metadata": map[string]any{
			"targetSha":    sha,
			"composerJson": map[string]any{"name": name, "type": "library", "version": version, "license": nil},
		},
	}
}

func connection(hasNext bool, cursor string, nodes ...map[string]any) map[string]any {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	var end any
	if cursor != "" {
		end = cursor
	}
	return map[string]any{
		"nodes":    nodes,
		"pageInfo": map[string]any{"hasNextPage": hasNext, "endCursor": end},
	}
}
