package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsync/internal/connectors/dropbox"
	"github.com/custodia-labs/docsync/internal/connectors/filesystem"
	"github.com/custodia-labs/docsync/internal/connectors/github"
	"github.com/custodia-labs/docsync/internal/connectors/google/drive"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// NewStore creates the document store named by settings.Type.
// Token-based stores fail with domain.ErrInvalidInput when no token is set.
func NewStore(ctx context.Context, settings domain.StoreSettings) (driven.DocumentStore, error) {
	if settings.Type.RequiresToken() && strings.TrimSpace(settings.Token) == "" {
		return nil, fmt.Errorf("%w: %s needs an access token (set %s or DOCSYNC_STORE_TOKEN)",
			domain.ErrInvalidInput, settings.Type.Description(), settings.Type.TokenEnv())
	}

	var (
		store driven.DocumentStore
		err   error
	)
	switch settings.Type {
	case domain.StoreDropbox:
		store, err = dropbox.New(settings.Token)

	case domain.StoreGoogleDrive:
		store, err = drive.New(ctx, settings.Token, drive.DefaultConfig())

	case domain.StoreGitHub:
		store, err = github.New(ctx, settings.Token)

	case domain.StoreFilesystem:
		store = filesystem.New("")

	default:
		return nil, fmt.Errorf("%w: store type %q", domain.ErrUnsupportedType, settings.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", settings.Type, err)
	}
	return store, nil
}
