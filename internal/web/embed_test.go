package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestFrontendPlaceholder(t *testing.T) {
	fsys, built := Frontend()
	assert.NotNil(t, fsys)
	assert.False(t, built)
}

func TestStaticRoutes(t *testing.T) {
	e := echo.New()
	e.GET("/api/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	RegisterStaticRoutes(e, fstest.MapFS{
		"index.html":    {Data: []byte("<html>editor</html>")},
		"assets/app.js": {Data: []byte("console.log('app')")},
	})

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "<html>editor</html>"},
		{"/assets/app.js", http.StatusOK, "console.log('app')"},
		{"/sessions/abc", http.StatusOK, "<html>editor</html>"},
		{"/assets", http.StatusOK, "<html>editor</html>"},
		{"/api/health", http.StatusOK, "ok"},
		{"/api/nothing", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}
