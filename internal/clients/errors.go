package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUpstream matches every *UpstreamError.
	ErrUpstream    = errors.New("upstream request failed")
	ErrCircuitOpen = errors.New("upstream circuit open")
)

// UpstreamError is a failed call to the shop API: either a non-2xx
// response or a transport failure (StatusCode 0).
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: upstream responded with status %d", e.Operation, e.StatusCode)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus is the status to answer the storefront client with.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode == 0 {
		if errors.Is(e.Err, ErrCircuitOpen) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return e.StatusCode
}

// Details returns the upstream body, decoded when it is JSON.
func (e *UpstreamError) Details() interface{} {
	if len(e.Body) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(e.Body, &v); err == nil {
		return v
	}
	return string(e.Body)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}
