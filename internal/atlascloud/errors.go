package atlascloud

import (
	"errors"
	"fmt"
)

// Well-formed responses that lack the expected result.
var (
	ErrSchemaNotComputed = errors.New("atlas schema was not created")
	ErrNotCreated        = errors.New("schema visualization was not created")
	ErrNotShared         = errors.New("schema visualization was not shared")
)

// ProtocolError is returned for a response that is not valid JSON or that
// reports GraphQL errors.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return "Error in GraphQL query: " + e.Detail
}

// HTTPError is returned for a non-2xx response without GraphQL errors.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
