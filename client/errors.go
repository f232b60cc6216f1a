package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"adminpanel/pkg/constraints"
)

// APIError is the only error shape the client produces.
type APIError struct {
	Type    constraints.ErrorType `json:"type"`
	Message string                `json:"message"`
	Status  int                   `json:"status,omitempty"`
	// Errors carries structured detail such as field-level validation
	// failures, verbatim from the response body.
	Errors    json.RawMessage `json:"errors,omitempty"`
	Timestamp string          `json:"timestamp"`

	cause error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// TypeOf returns the classified type of err, UnknownError for foreign errors.
func TypeOf(err error) constraints.ErrorType {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Type
	}
	return constraints.UnknownError
}

func IsType(err error, t constraints.ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsCanceled reports whether err comes from the caller cancelling its context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Message extracts a human-readable message from any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

var statusTypes = map[int]constraints.ErrorType{
	400: constraints.ValidationError,
	401: constraints.AuthenticationError,
	403: constraints.AuthorizationError,
	404: constraints.NotFoundError,
	500: constraints.ServerError,
}

// TypeForStatus maps an HTTP status code onto the error taxonomy.
func TypeForStatus(status int) constraints.ErrorType {
	if t, ok := statusTypes[status]; ok {
		return t
	}
	return constraints.UnknownError
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(time.RFC3339Nano)
}

func (c *Client) wrap(t constraints.ErrorType, msg string, status int, cause error) *APIError {
	return &APIError{
		Type:      t,
		Message:   msg,
		Status:    status,
		Timestamp: c.timestamp(),
		cause:     cause,
	}
}

type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// classifyStatus builds the error for a response that carried a non-2xx
// status. The message prefers body.message, then body.error.
func (c *Client) classifyStatus(status int, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d error", status)
	}

	apiErr := c.wrap(TypeForStatus(status), msg, status, nil)
	if len(eb.Errors) > 0 && string(eb.Errors) != "null" {
		apiErr.Errors = eb.Errors
	}
	return apiErr
}

// classifyTransport handles failures where no usable response arrived.
// afterResponse is true when headers were received but the body was lost.
func (c *Client) classifyTransport(ctx context.Context, err error, afterResponse bool) *APIError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return c.wrap(constraints.TimeoutError, "Request timeout. Please try again.", 0, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return c.wrap(constraints.TimeoutError, "Request timeout. Please try again.", 0, err)
	case errors.Is(err, context.Canceled):
		return c.wrap(constraints.NetworkError, "Request cancelled", 0, err)
	case afterResponse || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET):
		return c.wrap(constraints.NetworkError, "No response received", 0, err)
	case isNetworkFailure(err):
		return c.wrap(constraints.NetworkError, "Network error. Please check your connection.", 0, err)
	default:
		return c.wrap(constraints.UnknownError, err.Error(), 0, err)
	}
}

func isNetworkFailure(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var netErr net.Error
	return errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &netErr)
}
