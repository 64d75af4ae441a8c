package boardapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"boardctl/internal/service"
)

var (
	// ErrTimeout means the server did not answer within the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrNoBoard means a board operation was attempted with no board selected.
	ErrNoBoard = errors.New("no board selected (run: boardctl board <id>)")

	// ErrTooLarge means an upload exceeds MaxUploadSize.
	ErrTooLarge = errors.New("file too large, maximum size is 5MB")

	// ErrUnsupportedType means an upload is not a JPEG, PNG or GIF image.
	ErrUnsupportedType = errors.New("unsupported file type, only JPEG, PNG and GIF are allowed")
)

// APIError is a non-success HTTP response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Unwrap maps the status onto the shared service errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrUnauthorized
	case http.StatusNotFound:
		return service.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return service.ErrRejected
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case http.StatusUnsupportedMediaType:
		return ErrUnsupportedType
	}
	return nil
}

// errorFromResponse reads a failed response into an *APIError. FastAPI puts
// the message in "detail", either a string or a list of validation errors.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			apiErr.Detail = s
		} else {
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(payload.Detail, &items) == nil {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if it.Msg != "" {
						msgs = append(msgs, it.Msg)
					}
				}
				apiErr.Detail = strings.Join(msgs, "; ")
			}
		}
	}
	return apiErr
}

// wrapError converts transport failures into user-facing errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return err
}
