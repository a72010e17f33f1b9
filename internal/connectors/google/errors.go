package google

import (
	"errors"
	"net"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

var (
	// ErrUnauthorized indicates an invalid or expired access token.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates the token lacks the drive.readonly scope or
	// access to the folder.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the file or folder does not exist.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the per-user request quota was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")
)

// sentinels maps API status codes to the errors WrapError joins.
var sentinels = map[int]error{
	http.StatusUnauthorized:    ErrUnauthorized,
	http.StatusForbidden:       ErrForbidden,
	http.StatusNotFound:        ErrNotFound,
	http.StatusTooManyRequests: ErrRateLimited,
}

// is reports whether err is, or carries the status code of, sentinel.
func is(err, sentinel error) bool {
	if errors.Is(err, sentinel) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && sentinels[gerr.Code] == sentinel
}

// IsUnauthorized reports an invalid token.
func IsUnauthorized(err error) bool { return is(err, ErrUnauthorized) }

// IsForbidden reports insufficient permissions.
func IsForbidden(err error) bool { return is(err, ErrForbidden) }

// IsNotFound reports a missing file or folder.
func IsNotFound(err error) bool { return is(err, ErrNotFound) }

// IsRateLimited reports an exceeded quota.
func IsRateLimited(err error) bool { return is(err, ErrRateLimited) }

// IsConnectionError reports that the API could not be reached or refused
// the credentials.
func IsConnectionError(err error) bool {
	if IsUnauthorized(err) || IsForbidden(err) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// WrapError joins the sentinel matching a googleapi error's status code.
// The original error stays in the chain.
func WrapError(err error) error {
	var gerr *googleapi.Error
	if err == nil || !errors.As(err, &gerr) {
		return err
	}
	if sentinel, ok := sentinels[gerr.Code]; ok {
		return errors.Join(sentinel, err)
	}
	return err
}
