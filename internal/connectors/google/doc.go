// Package google provides shared infrastructure for Google API document stores.
//
// It contains:
//   - Service factory for creating an authenticated Drive client
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Pacer: request spacing with a pause after 429 answers
//
// # Usage
//
//	ts, err := google.StaticTokenSource(token)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// The Drive store needs https://www.googleapis.com/auth/drive.readonly.
package google
