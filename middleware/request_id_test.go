package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/api/echo", func(c *gin.Context) {
		*seen = GetRequestID(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/api/echo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	echoed := w.Header().Get(RequestIDHeader)
	if echoed == "" {
		t.Fatal("response missing request ID header")
	}
	if seen != echoed {
		t.Errorf("handler saw %q but response header carries %q", seen, echoed)
	}
}

func TestRequestIDHonorsUpstreamHeader(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/api/echo", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if seen != "upstream-id-42" {
		t.Errorf("handler saw %q, want the upstream ID", seen)
	}
	if got := w.Header().Get(RequestIDHeader); got != "upstream-id-42" {
		t.Errorf("response echoes %q, want the upstream ID", got)
	}
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if got := GetRequestID(c); got != "" {
		t.Errorf("expected empty ID without the middleware, got %q", got)
	}
}
