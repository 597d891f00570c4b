package posapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the server. Message carries the server's "errore"
// field when the body has one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pos api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("pos api: %d: %s", e.Status, e.Message)
}

// UserMessage is the text to show in a blocking alert, falling back to def.
func UserMessage(err error, def string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return "Errore: " + apiErr.Message
	}
	return def
}

func newAPIError(resp *http.Response) *APIError {
	e := &APIError{Status: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(b) == 0 {
		return e
	}
	var body struct {
		Errore string `json:"errore"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		e.Message = body.Errore
		if e.Message == "" {
			e.Message = body.Error
		}
		return e
	}
	if !strings.HasPrefix(strings.TrimSpace(string(b)), "<") {
		e.Message = strings.TrimSpace(string(b))
	}
	return e
}
