package gitlab

import (
	"context"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/observability"
)

// FindProjectsWithPackages returns the projects chosen by sel, each with
// the first page of its Composer packages.
//
// The namespace and all-projects shapes follow the project cursor until
// GitLab reports no next page. The single-project shape is sent once.
// Projects are returned in the order GitLab listed them. A project or
// namespace that does not exist yields an empty result.
//
// Any transport or GraphQL error aborts the fetch; no partial result is
// returned.
func (c *Client) FindProjectsWithPackages(ctx context.Context, sel Selector) ([]Project, error) {
	op, vars, err := sel.query()
	if err != nil {
		return nil, err
	}
	hooks := observability.Build()

	var projects []Project
	for {
		var page projectsPage
		if err := c.run(ctx, op, vars, &page); err != nil {
			return nil, err
		}

		if sel.Single() {
			if page.Project == nil {
				hooks.OnPageFetched(ctx, op.Name(), 0)
				return nil, nil
			}
			hooks.OnPageFetched(ctx, op.Name(), 1)
			return []Project{*page.Project}, nil
		}

		conn := page.connection()
		if conn == nil {
			return projects, nil
		}
		projects = append(projects, conn.Nodes...)
		hooks.OnPageFetched(ctx, op.Name(), len(conn.Nodes))

		if !conn.PageInfo.HasNextPage {
			return projects, nil
		}
		cursor := conn.PageInfo.EndCursor
		if cursor == "" {
			return nil, gwerrors.New(gwerrors.ErrCodeUpstream, "%s: next page announced without a cursor", op.Name())
		}
		if prev, _ := vars[varAfterProject].(string); prev == cursor {
			return nil, gwerrors.New(gwerrors.ErrCodeUpstream, "%s: cursor %q did not advance", op.Name(), cursor)
		}
		vars[varAfterProject] = cursor
	}
}
