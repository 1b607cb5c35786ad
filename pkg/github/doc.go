// Package github implements the platform.APIClient collaborator against the
// GitHub REST API. It owns transport concerns for the reconciliation layer:
// authentication, retries with backoff, pagination and the translation of
// GitHub error responses into platform.RemoteError values carrying the HTTP
// status code.
package github
