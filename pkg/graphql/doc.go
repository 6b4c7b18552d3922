// Package graphql builds GraphQL query documents from immutable selection trees.
//
// An [Operation] is a named query with typed variable declarations and a set
// of root selections. Selections are [Field] values (optionally with
// arguments and sub-selections) and [InlineFragment] values. Every builder
// method returns a new value and never mutates its receiver, so subtrees can
// be shared freely between operations:
//
//	pageInfo := graphql.NewField("pageInfo").Select(
//	    graphql.NewField("hasNextPage"),
//	    graphql.NewField("endCursor"),
//	)
//	op := graphql.NewQuery("Projects",
//	    graphql.Optional("after", "String"),
//	).Select(
//	    graphql.NewField("projects").
//	        Args(graphql.Arg("after", graphql.Var("after"))).
//	        Select(graphql.NewField("nodes").Select(graphql.NewField("id")), pageInfo),
//	)
//	fmt.Println(op)
//
// [Operation.Bind] turns loosely provided values into the variables object
// sent on the wire, keeping only declared variables and rejecting missing
// required ones.
package graphql
