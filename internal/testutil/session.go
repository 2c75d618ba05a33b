// Package testutil builds session managers and echo contexts for handler
// tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/journal"
	"github.com/circuit-designer/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}

// NewSessionManager returns a manager journaling to an in-memory DuckDB
// that is closed when the test ends.
func NewSessionManager(t testing.TB) *session.Manager {
	t.Helper()
	logger := DiscardLogger()
	j, err := journal.Open(journal.DefaultOptions, logger)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	m := session.NewManager(session.Config{Journal: j, Logger: logger})
	t.Cleanup(func() { m.Close() })
	return m
}

// Params are path parameters, name then value.
type Params []string

// NewContext builds an echo context for method and path with an optional
// JSON body and the given path parameters.
func NewContext(e *echo.Echo, method, path string, body interface{}, params Params) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewBuffer(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

// StatusOf returns the HTTP status an error handler would send for err, or
// the recorder's code when err is nil.
func StatusOf(e *echo.Echo, c echo.Context, rec *httptest.ResponseRecorder, err error) int {
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}
