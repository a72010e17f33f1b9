// Package github implements a document store over a GitHub repository directory.
//
// The container names a directory inside one repository:
//
//	owner/repo[/path][@ref]
//
// Without a ref the repository's default branch is used. Listing returns the
// files directly inside the directory; subdirectories are skipped.
//
// # Architecture
//
//   - Store: implements [driven.DocumentStore]
//   - Client: wraps go-github and translates its errors
//   - Throttle: paces requests against the API quota
//   - Location: parses the container string
//
// # Authentication
//
// Personal access tokens (classic or fine-grained) and OAuth access tokens are
// both accepted. Private repositories need the 'repo' scope (classic) or
// Contents read access (fine-grained).
//
// # Rate Limiting
//
// Requests are paced at about 1.2 per second, under the 5,000/hour quota.
// The quota go-github reports with each response is recorded; when fewer
// than 100 requests remain the throttle waits for the window to reset.
// Primary and secondary limit errors surface as [RateLimitError].
//
// # Remote IDs
//
// Each listed file carries a remote ID of the form owner/repo:blobsha, so
// Fetch downloads exactly the content that was listed through the Git blobs
// API (up to 100MB per file).
//
// # Error Handling
//
// 401 and 403 responses and network errors are wrapped in
// [domain.ErrStoreConnectionFailed] and halt the run. Other errors, such as a
// 404 for a single blob, are reported against that document only.
package github
