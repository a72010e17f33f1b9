package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrFetchFailed", ErrFetchFailed},
		{"ErrExtractionFailed", ErrExtractionFailed},
		{"ErrEmptyText", ErrEmptyText},
		{"ErrIndexWriteFailed", ErrIndexWriteFailed},
		{"ErrIndexSetupFailed", ErrIndexSetupFailed},
		{"ErrStoreConnectionFailed", ErrStoreConnectionFailed},
		{"ErrEngineConnectionFailed", ErrEngineConnectionFailed},
		{"ErrQueryFailed", ErrQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"index setup", ErrIndexSetupFailed, true},
		{"store connection", ErrStoreConnectionFailed, true},
		{"engine connection", ErrEngineConnectionFailed, true},
		{"wrapped engine connection", fmt.Errorf("upsert: %w", ErrEngineConnectionFailed), true},
		{"fetch", ErrFetchFailed, false},
		{"extraction", ErrExtractionFailed, false},
		{"empty text", ErrEmptyText, false},
		{"index write", ErrIndexWriteFailed, false},
		{"unrelated", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestReasonFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureReason
	}{
		{"fetch", fmt.Errorf("%w: 404", ErrFetchFailed), ReasonFetchFailed},
		{"extraction", fmt.Errorf("%w: status 422", ErrExtractionFailed), ReasonExtractionFailed},
		{"empty text", ErrEmptyText, ReasonEmptyText},
		{"index write", fmt.Errorf("%w: mapping conflict", ErrIndexWriteFailed), ReasonIndexWriteFailed},
		{"unknown defaults to fetch", errors.New("disk full"), ReasonFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonFor(tt.err))
		})
	}
}

func TestDocumentError(t *testing.T) {
	cause := fmt.Errorf("%w: status 500", ErrExtractionFailed)
	docErr := NewDocumentError("a.pdf", cause)

	assert.Equal(t, "a.pdf", docErr.Name)
	assert.Equal(t, ReasonExtractionFailed, docErr.Reason)
	assert.Contains(t, docErr.Error(), "a.pdf")
	assert.Contains(t, docErr.Error(), "extraction_failed")
	assert.True(t, errors.Is(docErr, ErrExtractionFailed))

	var target *DocumentError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", docErr), &target))
	assert.Equal(t, "a.pdf", target.Name)
}
