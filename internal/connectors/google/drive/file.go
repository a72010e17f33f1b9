package drive

import (
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
	MimeTypeShortcut     = "application/vnd.google-apps.shortcut"
)

// ExportMimePDF is the format Workspace files are exported to.
const ExportMimePDF = "application/pdf"

// exportPrefix marks remote IDs that must be exported rather than downloaded.
const exportPrefix = "export:"

// listFields is the partial response requested for file listings.
const listFields = "nextPageToken, files(id, name, mimeType, size, trashed)"

// IsWorkspaceFile reports whether the MIME type is a native Google file
// that has no binary content of its own.
func IsWorkspaceFile(mimeType string) bool {
	switch mimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSheet, MimeTypeGoogleSlides:
		return true
	default:
		return false
	}
}

// ShouldList checks if a file belongs in a listing.
func ShouldList(file *drive.File, cfg *Config) bool {
	if file.Trashed {
		return false
	}
	switch {
	case file.MimeType == MimeTypeFolder, file.MimeType == MimeTypeShortcut:
		return false
	case strings.HasPrefix(file.MimeType, "application/vnd.google-apps."):
		return cfg.ExportWorkspaceFiles && IsWorkspaceFile(file.MimeType)
	default:
		return true
	}
}

// FileToRef converts a Drive file to a document reference.
// Workspace files are named "<name>.pdf" and carry an export remote ID.
func FileToRef(file *drive.File) domain.DocumentRef {
	if IsWorkspaceFile(file.MimeType) {
		return domain.DocumentRef{
			Name:     file.Name + ".pdf",
			RemoteID: exportPrefix + file.Id,
		}
	}
	return domain.DocumentRef{
		Name:     file.Name,
		RemoteID: file.Id,
		Size:     file.Size,
	}
}

// parseRemoteID splits a remote ID into the file ID and whether it must be
// exported.
func parseRemoteID(remoteID string) (string, bool) {
	if id, ok := strings.CutPrefix(remoteID, exportPrefix); ok {
		return id, true
	}
	return remoteID, false
}

// folderQuery builds the list query for direct, non-trashed children.
func folderQuery(folderID string) string {
	if folderID == "" {
		folderID = "root"
	}
	return fmt.Sprintf("'%s' in parents and trashed = false", strings.ReplaceAll(folderID, "'", `\'`))
}

// WebURL returns the drive.google.com viewer location of a file.
func WebURL(fileID string) string {
	return "https://drive.google.com/file/d/" + fileID + "/view"
}
