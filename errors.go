package llmclient

import (
	"fmt"

	"github.com/checkmarble/llmclient/internal"
)

// ErrInvalidUtf8 is matched (with errors.Is) by every error caused by a
// response body or chunk that could not be decoded as UTF-8.
var ErrInvalidUtf8 = internal.ErrInvalidUtf8

// StatusError is returned by a client created with WithStatusCheck() when the
// remote API answers with a non-2xx status code.
type StatusError struct {
	StatusCode int
	// Body is the response body, only populated for non-streaming requests.
	// Invalid UTF-8 sequences are replaced with U+FFFD.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API responded with status %d", e.StatusCode)
	}

	return fmt.Sprintf("API responded with status %d: %s", e.StatusCode, e.Body)
}
