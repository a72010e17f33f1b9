package dropbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/users"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// StoreType is the store type identifier.
const StoreType = "dropbox"

// Verify interface compliance.
var _ driven.DocumentStore = (*Store)(nil)

// filesAPI is the subset of files.Client the store calls.
type filesAPI interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
}

// accountAPI is the subset of users.Client the store calls.
type accountAPI interface {
	GetCurrentAccount() (*users.FullAccount, error)
}

// Store lists and downloads files from a Dropbox account.
type Store struct {
	files   filesAPI
	account accountAPI
}

// New creates a Dropbox store authenticated with an access token.
func New(token string) (*Store, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: dropbox access token is required", domain.ErrInvalidInput)
	}
	cfg := dropbox.Config{
		Token:    token,
		LogLevel: dropbox.LogOff,
	}
	return &Store{
		files:   files.New(cfg),
		account: users.New(cfg),
	}, nil
}

// Type returns the store type identifier.
func (s *Store) Type() string {
	return StoreType
}

// Validate checks the token by fetching the current account.
func (s *Store) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	account, err := s.account.GetCurrentAccount()
	if err != nil {
		return fmt.Errorf("%w: get current account: %w", domain.ErrStoreConnectionFailed, err)
	}
	name := account.Email
	if account.Name != nil && account.Name.DisplayName != "" {
		name = account.Name.DisplayName
	}
	logger.Debug("%s logged in Dropbox", name)
	return nil
}

// List returns the files directly inside container, following pagination.
// Folders and deleted entries are skipped.
func (s *Store) List(ctx context.Context, container string) ([]domain.DocumentRef, error) {
	res, err := s.files.ListFolder(files.NewListFolderArg(folderPath(container)))
	if err != nil {
		return nil, classify("list folder", err)
	}

	var refs []domain.DocumentRef
	for {
		for _, entry := range res.Entries {
			file, ok := entry.(*files.FileMetadata)
			if !ok {
				continue
			}
			logger.Debug("Listed %s (%s)", file.Name, WebURL(file.PathDisplay))
			refs = append(refs, FileToRef(file))
		}
		if !res.HasMore {
			return refs, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err = s.files.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, classify("list folder continue", err)
		}
	}
}

// Fetch downloads a file by its "id:" identifier.
func (s *Store) Fetch(ctx context.Context, remoteID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, content, err := s.files.Download(files.NewDownloadArg(remoteID))
	if err != nil {
		return nil, classify("download", err)
	}
	return content, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// classify wraps transport and authentication failures as connection
// failures. Anything else is returned as a plain error.
func classify(op string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrStoreConnectionFailed, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// authSummaries are the error summaries Dropbox returns for rejected tokens.
var authSummaries = []string{
	"invalid_access_token",
	"expired_access_token",
	"missing_scope",
	"user_suspended",
}

func isConnectionError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, summary := range authSummaries {
		if strings.Contains(msg, summary) {
			return true
		}
	}
	return false
}
