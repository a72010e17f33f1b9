// Package connectors provides the document store implementations: Dropbox,
// Google Drive, GitHub and the local filesystem. Each store knows how to list
// a container and stream a file's content by its remote ID.
//
// NewStore selects the implementation from settings at startup.
package connectors
