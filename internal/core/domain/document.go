package domain

import (
	"path"
	"strings"
)

// DocumentRef identifies a file in the remote document store.
// It is produced by a listing call and consumed once per sync pass.
type DocumentRef struct {
	// Name is the display name of the file. It becomes the index identifier.
	Name string

	// RemoteID is the store-specific identifier used to fetch content.
	RemoteID string

	// Size is the reported size in bytes, or 0 when the store does not say.
	Size int64
}

// Extension returns the file extension of Name, including the leading dot.
// Leading dots are part of the base name, so ".pdf" has no extension.
func (r DocumentRef) Extension() string {
	base := strings.TrimLeft(path.Base(r.Name), ".")
	if !strings.Contains(base, ".") {
		return ""
	}
	return path.Ext(base)
}

// HasExtension reports whether the document's extension is exactly ext.
func (r DocumentRef) HasExtension(ext string) bool {
	return ext != "" && r.Extension() == ext
}

// HasExtensionFold is HasExtension ignoring case, so "REPORT.PDF"
// matches ".pdf".
func (r DocumentRef) HasExtensionFold(ext string) bool {
	return ext != "" && strings.EqualFold(r.Extension(), ext)
}

// FilterEligible returns the refs whose name carries the supported extension,
// preserving listing order. Matching is exact unless ignoreCase is set.
func FilterEligible(refs []DocumentRef, ext string, ignoreCase bool) []DocumentRef {
	match := DocumentRef.HasExtension
	if ignoreCase {
		match = DocumentRef.HasExtensionFold
	}
	eligible := make([]DocumentRef, 0, len(refs))
	for _, ref := range refs {
		if match(ref, ext) {
			eligible = append(eligible, ref)
		}
	}
	return eligible
}

// IndexEntry is the unit written to the search engine.
// ID equals the document name so re-ingesting a document overwrites it.
type IndexEntry struct {
	ID   string
	Text string
}

// QueryResult is the normalised projection of a search engine response.
// Ordering of DocumentIDs is the engine's relevance order.
type QueryResult struct {
	TotalCount  int      `json:"items" yaml:"items"`
	DocumentIDs []string `json:"paths" yaml:"paths"`
}
