package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	perrors "github.com/jrsteele09/go-affiliate-portal/internal/errors"
)

// Error taxonomy. Every *APIError matches exactly one of the status sentinels
// under errors.Is.
var (
	ErrAuthentication = perrors.ErrAuthentication // 401, session cleared
	ErrAuthorization  = perrors.ErrAuthorization  // 403, session untouched
	ErrAPI            = perrors.ErrAPI            // any other non-2xx
	ErrNetwork        = perrors.ErrNetwork        // no response received
	ErrSessionChanged = perrors.ErrSessionChanged // credential changed while a request was in flight
	ErrInvalidRequest = perrors.ErrInvalidRequest // rejected before sending
	ErrDecode         = perrors.ErrDecode         // 2xx with an unreadable body
)

const (
	authenticationRequiredMsg = "Authentication required"
	permissionDeniedMsg       = "You do not have permission to perform this action"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is maps the status onto the taxonomy sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Status == http.StatusUnauthorized
	case ErrAuthorization:
		return e.Status == http.StatusForbidden
	case ErrAPI:
		return e.Status != http.StatusUnauthorized && e.Status != http.StatusForbidden
	}
	return false
}

// AsAPIError extracts the *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if perrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// errorBody is the WordPress REST error shape: {"code": "...", "message": "...", "data": {"status": 401}}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// newAPIError builds the error for a non-2xx response body.
func newAPIError(status int, body []byte) *APIError {
	text := strings.TrimSpace(string(body))
	apiErr := &APIError{Status: status, Message: text}

	var eb errorBody
	if len(text) > 0 && text[0] == '{' && json.Unmarshal(body, &eb) == nil {
		apiErr.Code = eb.Code
		switch {
		case eb.Message != "":
			apiErr.Message = eb.Message
		case eb.Error != "":
			apiErr.Message = eb.Error
		}
	}

	switch status {
	case http.StatusUnauthorized:
		apiErr.Message = authenticationRequiredMsg
	case http.StatusForbidden:
		if apiErr.Message == "" {
			apiErr.Message = permissionDeniedMsg
		}
	default:
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
