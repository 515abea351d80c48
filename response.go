package b2files

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// UnknownErrorCode is reported when an error response carries no code.
const UnknownErrorCode = "unknown"

// maxErrorBody bounds how much of a failed response is read into memory.
const maxErrorBody = 64 << 10

// CheckResponse reports whether resp carries a service error. A 2xx response
// returns nil and its body is left unread for the caller to decode. Any
// other status is parsed into a *ServiceError with its fields copied verbatim.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}

	var svcErr ServiceError
	if jsonErr := json.Unmarshal(body, &svcErr); jsonErr != nil || (svcErr.Code == "" && svcErr.Message == "") {
		// Not the structured shape, e.g. a proxy error page.
		return &ServiceError{
			Status:  resp.StatusCode,
			Code:    UnknownErrorCode,
			Message: strings.TrimSpace(string(body)),
		}
	}
	if svcErr.Status == 0 {
		svcErr.Status = resp.StatusCode
	}
	if svcErr.Code == "" {
		svcErr.Code = UnknownErrorCode
	}

	return &svcErr
}

// DecodeJSON decodes a success body into v. A body that does not decode is
// reported as a *MalformedResponseError, never as a service error.
func DecodeJSON(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &MalformedResponseError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        err,
		}
	}

	return nil
}
