// Package composer turns GitLab's Composer package registry into a
// Composer repository document.
//
// # Overview
//
// A [Formatter] fetches projects and their packages through a [ProjectSource],
// resolves each package version's composer.json with a [ManifestResolver],
// and merges both into a [Repository]:
//
//	{"packages": {"acme/widgets": {"1.0.0": {"name": ..., "source": ..., "dist": ...}}}}
//
// # Merging
//
// Each version descriptor starts from the composer.json committed at the
// package's target commit. The registry then overrides name and version,
// and type and license when GitLab indexed them. Finally the source (the
// project's git URL at the commit) and dist (GitLab's archive endpoint)
// blocks are set.
//
// When several projects publish the same name and version, the project
// listed last by GitLab wins.
//
// # Caching
//
// Manifests are cached without expiry under "{project}@{sha}/composer.json".
// The content of a file at a commit never changes, so entries are never
// invalidated. A missing composer.json is cached as null.
package composer
