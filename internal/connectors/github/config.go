package github

import (
	"fmt"
	"strings"
)

// Location identifies a directory inside a repository.
type Location struct {
	Owner string
	Repo  string
	// Path is the directory path without leading or trailing slashes.
	// Empty means the repository root.
	Path string
	// Ref is a branch, tag or commit. Empty means the default branch.
	Ref string
}

// ParseContainer parses "owner/repo[/path][@ref]".
func ParseContainer(container string) (Location, error) {
	s := strings.TrimSpace(container)
	var loc Location
	if i := strings.LastIndex(s, "@"); i >= 0 {
		loc.Ref = s[i+1:]
		s = s[:i]
		if loc.Ref == "" {
			return Location{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidContainer, container)
		}
	}

	parts := strings.SplitN(strings.Trim(s, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidContainer, container)
	}
	loc.Owner = parts[0]
	loc.Repo = parts[1]
	if len(parts) == 3 {
		loc.Path = strings.Trim(parts[2], "/")
	}
	return loc, nil
}

// String formats the location back into container form.
func (l Location) String() string {
	s := l.Owner + "/" + l.Repo
	if l.Path != "" {
		s += "/" + l.Path
	}
	if l.Ref != "" {
		s += "@" + l.Ref
	}
	return s
}

// blobID builds the remote ID for a blob in this location's repository.
func (l Location) blobID(sha string) string {
	return l.Owner + "/" + l.Repo + ":" + sha
}

// parseBlobID splits a remote ID built by blobID.
func parseBlobID(remoteID string) (owner, repo, sha string, err error) {
	repoPart, sha, ok := strings.Cut(remoteID, ":")
	if !ok || sha == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidRemoteID, remoteID)
	}
	owner, repo, ok = strings.Cut(repoPart, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidRemoteID, remoteID)
	}
	return owner, repo, sha, nil
}

// WebURL returns the github.com location of a file.
func WebURL(loc Location, filePath string) string {
	ref := loc.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", loc.Owner, loc.Repo, ref, filePath)
}
