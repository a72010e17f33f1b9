package driven

import (
	"context"
	"io"
)

// TextExtractor converts raw document bytes into plain text.
// It is a pure request/response adapter with no state.
type TextExtractor interface {
	// Extract sends content to the extraction service and returns the text.
	// Any transport error or non-success response is returned as an error
	// wrapping domain.ErrExtractionFailed. Blank text is not an error here.
	Extract(ctx context.Context, content io.Reader) (string, error)
}
