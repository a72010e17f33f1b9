package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// StoreType is the store type identifier.
const StoreType = "github"

// Verify interface compliance.
var _ driven.DocumentStore = (*Store)(nil)

// Store lists and downloads files from a GitHub repository directory.
type Store struct {
	client *Client
}

// New creates a GitHub store authenticated with an access token.
func New(ctx context.Context, token string) (*Store, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: github access token is required", domain.ErrInvalidInput)
	}
	return NewWithClient(NewClientWithToken(ctx, token)), nil
}

// NewWithClient creates a GitHub store around an existing client.
func NewWithClient(client *Client) *Store {
	return &Store{client: client}
}

// Type returns the store type identifier.
func (s *Store) Type() string {
	return StoreType
}

// Validate checks the token by fetching the authenticated user.
func (s *Store) Validate(ctx context.Context) error {
	login, err := s.client.ValidateCredentials(ctx)
	if err != nil {
		return classify(err)
	}
	logger.Debug("%s logged in GitHub", login)
	return nil
}

// List returns the files directly inside the container directory.
func (s *Store) List(ctx context.Context, container string) ([]domain.DocumentRef, error) {
	loc, err := ParseContainer(container)
	if err != nil {
		return nil, err
	}

	entries, err := s.client.ListDirectory(ctx, loc)
	if err != nil {
		return nil, classify(err)
	}

	refs := make([]domain.DocumentRef, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}
		logger.Debug("Listed %s (%s)", entry.GetName(), WebURL(loc, entry.GetPath()))
		refs = append(refs, domain.DocumentRef{
			Name:     entry.GetName(),
			RemoteID: loc.blobID(entry.GetSHA()),
			Size:     int64(entry.GetSize()),
		})
	}
	return refs, nil
}

// Fetch downloads a blob by the remote ID List produced.
func (s *Store) Fetch(ctx context.Context, remoteID string) (io.ReadCloser, error) {
	owner, repo, sha, err := parseBlobID(remoteID)
	if err != nil {
		return nil, err
	}

	data, err := s.client.GetBlobRaw(ctx, owner, repo, sha)
	if err != nil {
		return nil, classify(err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// classify wraps authentication and network failures as connection failures.
func classify(err error) error {
	if IsUnauthorized(err) || IsForbidden(err) {
		return fmt.Errorf("%w: %w", domain.ErrStoreConnectionFailed, err)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreConnectionFailed, err)
	}
	return err
}
