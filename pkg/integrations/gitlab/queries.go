package gitlab

import "github.com/matzehuels/composer-gateway/pkg/graphql"

// Operation names as sent in the request body.
const (
	opProject           = "Project"
	opProjects          = "Projects"
	opNamespaceProjects = "NamespaceProjects"
	opProjectBlobs      = "ProjectBlobs"
)

// Variable names shared by the query shapes.
const (
	varFullPath     = "fullPath"
	varNamespace    = "namespace"
	varAfterProject = "afterProject"
	varAfterPackage = "afterPackage"
	varPackageName  = "packageName"
	varPaths        = "paths"
	varRef          = "ref"
)

var (
	// ProjectQuery fetches one project by full path with its Composer packages.
	ProjectQuery = graphql.NewQuery(opProject,
		graphql.Required(varFullPath, "ID"),
		graphql.Optional(varAfterPackage, "String"),
		graphql.Optional(varPackageName, "String"),
	).Select(
		graphql.NewField("project").
			Args(graphql.Arg("fullPath", graphql.Var(varFullPath))).
			Select(projectSelections()...),
	)

	// ProjectsQuery pages through every project visible to the caller.
	ProjectsQuery = graphql.NewQuery(opProjects,
		graphql.Optional(varAfterProject, "String"),
		graphql.Optional(varAfterPackage, "String"),
		graphql.Optional(varPackageName, "String"),
	).Select(
		projectsField().Args(
			graphql.Arg("membership", graphql.Bool(false)),
			graphql.Arg("after", graphql.Var(varAfterProject)),
		),
	)

	// NamespaceProjectsQuery pages through the projects of a group or user
	// namespace, subgroups included.
	NamespaceProjectsQuery = graphql.NewQuery(opNamespaceProjects,
		graphql.Required(varNamespace, "ID"),
		graphql.Optional(varAfterProject, "String"),
		graphql.Optional(varAfterPackage, "String"),
		graphql.Optional(varPackageName, "String"),
	).Select(
		graphql.NewField("namespace").
			Args(graphql.Arg("fullPath", graphql.Var(varNamespace))).
			Select(projectsField().Args(
				graphql.Arg("after", graphql.Var(varAfterProject)),
				graphql.Arg("includeSubgroups", graphql.Bool(true)),
			)),
	)

	// BlobsQuery fetches raw file contents of a project at a ref.
	BlobsQuery = graphql.NewQuery(opProjectBlobs,
		graphql.Required(varFullPath, "ID"),
		graphql.Required(varPaths, "[String!]"),
		graphql.Optional(varRef, "String"),
	).Select(
		graphql.NewField("project").
			Args(graphql.Arg("fullPath", graphql.Var(varFullPath))).
			Select(
				graphql.NewField("id"),
				graphql.NewField("fullPath"),
				graphql.NewField("repository").Select(
					graphql.NewField("blobs").
						Args(
							graphql.Arg("paths", graphql.Var(varPaths)),
							graphql.Arg("ref", graphql.Var(varRef)),
						).
						Select(graphql.NewField("nodes").Select(graphql.Fields("path", "rawBlob")...)),
				),
			),
	)
)

func pageInfoField() graphql.Field {
	return graphql.NewField("pageInfo").Select(graphql.Fields("hasNextPage", "endCursor")...)
}

func packagesField() graphql.Field {
	composerJSON := graphql.NewField("composerJson").
		Select(graphql.Fields("name", "type", "version", "license")...)
	metadata := graphql.NewField("metadata").
		Select(graphql.On("ComposerMetadata", graphql.NewField("targetSha"), composerJSON))
	nodes := graphql.NewField("nodes").
		Select(append(graphql.Fields("id", "name", "version"), metadata)...)

	return graphql.NewField("packages").
		Args(
			graphql.Arg("status", graphql.Enum("DEFAULT")),
			graphql.Arg("packageType", graphql.Enum("COMPOSER")),
			graphql.Arg("after", graphql.Var(varAfterPackage)),
			graphql.Arg("packageName", graphql.Var(varPackageName)),
		).
		Select(nodes, pageInfoField())
}

func projectSelections() []graphql.Selection {
	return append(
		graphql.Fields("id", "fullPath", "httpUrlToRepo", "webUrl"),
		packagesField(),
	)
}

// projectsField selects a project connection; callers attach the
// pagination arguments.
func projectsField() graphql.Field {
	return graphql.NewField("projects").Select(
		graphql.NewField("nodes").Select(projectSelections()...),
		pageInfoField(),
	)
}
