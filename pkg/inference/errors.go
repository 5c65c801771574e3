package inference

import (
	"fmt"

	"storyagent/pkg/utils"
)

// ConnectionError means the backend could not be reached or the call timed
// out.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// BackendError carries a non-success status returned by the backend.
type BackendError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Backend, e.StatusCode, utils.LimitStr(e.Body, 500))
}

// MalformedResponseError means no array of the expected shape could be
// recovered from the reply.
type MalformedResponseError struct {
	Backend string
	Reason  string
	Reply   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s (response text: %s)", e.Backend, e.Reason, utils.LimitStr(e.Reply, 200))
}
