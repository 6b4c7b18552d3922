// Package gitlab queries the GitLab GraphQL API for Composer packages.
//
// # Overview
//
// GitLab exposes its package registry through the same GraphQL graph as its
// projects. This package builds the queries that walk that graph, follows
// project-level cursor pagination, and decodes the responses into explicit
// records ([Project], [Package], [ComposerMetadata]).
//
// # Query shapes
//
// A [Selector] decides which query is sent:
//
//	Selector{}                                      // projects visible to the caller
//	Selector{Namespace: "acme"}                     // projects in acme and its subgroups
//	Selector{Namespace: "acme", Project: "widgets"} // the single project acme/widgets
//
// A project without a namespace is rejected before any request is made.
// PackageName narrows the packages returned in every shape.
//
// # Usage
//
//	api := integrations.NewClient(httputil.NewHTTPClient(0), nil)
//	client := gitlab.NewClient(api, "https://gitlab.com")
//	projects, err := client.FindProjectsWithPackages(ctx, gitlab.Selector{Namespace: "acme"})
//
// # Limitations
//
// Only the first page of packages is read for each project. GitLab's
// default page size therefore caps how many versions a single project can
// publish through this gateway. The package cursor is decoded into
// [PackageConnection.PageInfo] but never followed.
package gitlab
