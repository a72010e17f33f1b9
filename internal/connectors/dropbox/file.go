package dropbox

import (
	"net/url"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// FileToRef converts Dropbox file metadata to a document reference.
// The remote ID is the stable "id:" identifier so renames between listing
// and download do not break the fetch.
func FileToRef(file *files.FileMetadata) domain.DocumentRef {
	return domain.DocumentRef{
		Name:     file.Name,
		RemoteID: file.Id,
		Size:     int64(file.Size),
	}
}

// folderPath converts a container name to the path form ListFolder expects.
// The account root is the empty string, never "/".
func folderPath(container string) string {
	p := strings.TrimSpace(container)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "id:") {
		p = "/" + p
	}
	return p
}

// WebURL returns the dropbox.com location of a file path, for display.
func WebURL(pathDisplay string) string {
	if pathDisplay == "" {
		return "https://www.dropbox.com/home"
	}
	return "https://www.dropbox.com/home/" + url.PathEscape(strings.TrimPrefix(pathDisplay, "/"))
}
