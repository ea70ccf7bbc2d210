package hrapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// FetchError is returned for any list, detail or mutation call that did not succeed.
type FetchError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("failed to %s: %s", e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	default:
		return "failed to " + e.Op
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Unauthorized reports whether the collaborator rejected the bearer token.
func (e *FetchError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// AuthError is returned when the collaborator rejects login credentials.
type AuthError struct {
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "login failed"
	}

	return "login failed: " + e.Detail
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// readDetail extracts the server-provided message from an error response.
// FastAPI sends `detail` as a string or, for validation errors, as a list.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body errorBody
	if err = json.Unmarshal(data, &body); err != nil {
		return ""
	}

	if len(body.Detail) > 0 && !bytes.Equal(body.Detail, []byte("null")) {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			return s
		}

		var compact bytes.Buffer
		if json.Compact(&compact, body.Detail) == nil {
			return compact.String()
		}
	}

	return body.Error
}
