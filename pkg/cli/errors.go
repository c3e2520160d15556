package cli

import (
	"errors"
	"fmt"
)

// ErrCodeConnection marks an APIError raised before any response arrived.
const ErrCodeConnection = "connection_error"

// ErrUnhealthy is returned by health when the server does not answer OK.
var ErrUnhealthy = errors.New("server is not healthy")

// FormatError returns a user-friendly message for err.
func FormatError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == ErrCodeConnection {
		return fmt.Sprintf(`Error: %s

Suggestions:
  • Start the server: apisim serve
  • Check the server URL with --url or %s`, apiErr.Message, URLEnv)
	}
	return "Error: " + err.Error()
}
