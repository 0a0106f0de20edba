package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx answer from the REST backend. Message carries the
// server's human-readable text when the body had one.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func readError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := &Error{Status: resp.StatusCode}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		e.Code = er.Error
		e.Message = er.Message
		if e.Message == "" {
			e.Message = er.Error
		}
		return e
	}

	e.Message = strings.TrimSpace(string(body))
	return e
}
