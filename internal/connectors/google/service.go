package google

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// NewDriveService creates a Google Drive API service using the provided TokenSource.
// Extra options (endpoint, HTTP client) are appended after the token source.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return drive.NewService(ctx, all...)
}

// StaticTokenSource returns a TokenSource for a fixed OAuth access token.
func StaticTokenSource(accessToken string) (oauth2.TokenSource, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: google access token is required", domain.ErrInvalidInput)
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}), nil
}
