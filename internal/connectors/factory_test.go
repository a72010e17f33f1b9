package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.StoreSettings
		wantType string
	}{
		{
			name:     "dropbox",
			settings: domain.StoreSettings{Type: domain.StoreDropbox, Token: "sl.token"},
			wantType: "dropbox",
		},
		{
			name:     "google drive",
			settings: domain.StoreSettings{Type: domain.StoreGoogleDrive, Token: "ya29.token"},
			wantType: "gdrive",
		},
		{
			name:     "github",
			settings: domain.StoreSettings{Type: domain.StoreGitHub, Token: "ghp_token"},
			wantType: "github",
		},
		{
			name:     "filesystem needs no token",
			settings: domain.StoreSettings{Type: domain.StoreFilesystem},
			wantType: "filesystem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(context.Background(), tt.settings)
			require.NoError(t, err)
			require.NotNil(t, store)
			assert.Equal(t, tt.wantType, store.Type())
			assert.NoError(t, store.Close())
		})
	}
}

func TestNewStore_MissingToken(t *testing.T) {
	for _, storeType := range []domain.StoreType{domain.StoreDropbox, domain.StoreGoogleDrive, domain.StoreGitHub} {
		t.Run(string(storeType), func(t *testing.T) {
			store, err := NewStore(context.Background(), domain.StoreSettings{Type: storeType})

			assert.Nil(t, store)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), storeType.TokenEnv())
		})
	}
}

func TestNewStore_UnsupportedType(t *testing.T) {
	_, err := NewStore(context.Background(), domain.StoreSettings{Type: "s3", Token: "x"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNewStore_FilesystemWatches(t *testing.T) {
	store, err := NewStore(context.Background(), domain.StoreSettings{Type: domain.StoreFilesystem})
	require.NoError(t, err)

	_, ok := store.(driven.Watcher)
	assert.True(t, ok)
}
