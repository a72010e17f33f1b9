package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docsync/internal/connectors/google"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// StoreType is the store type identifier.
const StoreType = "gdrive"

// Verify interface compliance.
var _ driven.DocumentStore = (*Store)(nil)

// Store lists and downloads files from a Google Drive folder.
// The container is a folder ID; empty means the drive root.
type Store struct {
	svc    *drive.Service
	config *Config
	pacer  *google.Pacer
}

// New creates a Drive store authenticated with an OAuth access token.
func New(ctx context.Context, accessToken string, cfg *Config, opts ...option.ClientOption) (*Store, error) {
	ts, err := google.StaticTokenSource(accessToken)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewDriveService(ctx, ts, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewWithService(svc, cfg), nil
}

// NewWithService creates a Drive store around an existing service.
func NewWithService(svc *drive.Service, cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Store{
		svc:    svc,
		config: cfg,
		pacer:  google.NewPacer(google.DriveRequestsPerSecond, google.DriveBurst),
	}
}

// Type returns the store type identifier.
func (s *Store) Type() string {
	return StoreType
}

// Validate checks the token by fetching the account's About resource.
func (s *Store) Validate(ctx context.Context) error {
	if err := s.pacer.Wait(ctx); err != nil {
		return err
	}
	about, err := s.svc.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return s.classify("get about", err)
	}
	if about.User != nil {
		logger.Debug("%s logged in Google Drive", about.User.EmailAddress)
	}
	return nil
}

// List returns the files directly inside the container folder.
func (s *Store) List(ctx context.Context, container string) ([]domain.DocumentRef, error) {
	call := s.svc.Files.List().
		Q(folderQuery(strings.TrimSpace(container))).
		Fields(listFields).
		PageSize(s.config.PageSize)

	var refs []domain.DocumentRef
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, file := range page.Files {
			if !ShouldList(file, s.config) {
				continue
			}
			logger.Debug("Listed %s (%s)", file.Name, WebURL(file.Id))
			refs = append(refs, FileToRef(file))
		}
		return s.pacer.Wait(ctx)
	})
	if err != nil {
		return nil, s.classify("list files", err)
	}
	return refs, nil
}

// Fetch downloads a file, or exports it as PDF for Workspace files.
func (s *Store) Fetch(ctx context.Context, remoteID string) (io.ReadCloser, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	id, export := parseRemoteID(remoteID)
	if export {
		resp, err := s.svc.Files.Export(id, ExportMimePDF).Context(ctx).Download()
		if err != nil {
			return nil, s.classify("export file", err)
		}
		return resp.Body, nil
	}

	resp, err := s.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, s.classify("download file", err)
	}
	return resp.Body, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) classify(op string, err error) error {
	s.pacer.Backoff(err)
	err = google.WrapError(err)
	if google.IsConnectionError(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrStoreConnectionFailed, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
