// Package platform implements the remote-repository reconciliation layer.
// It keeps locally-desired automation artifacts (pull requests, issues,
// comments, labels, commit statuses) synchronized with their counterparts on
// a Git hosting service, through that service's REST API.
//
// The package includes:
// - APIClient interface for remote resource operations
// - Platform and Session types scoping state to one repository reconciliation
// - Lazily-populated, invalidatable list caches for PRs, issues and labels
// - Idempotent "ensure" operations that issue the minimal set of mutations
// - A one-shot conflict recovery protocol for racing pull request creation
package platform
