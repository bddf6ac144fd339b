package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestStatusRecorderWriteTracksAndTruncates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	recorder := &statusRecorder{
		ResponseWriter: c.Writer,
		statusCode:     http.StatusOK,
		maxLogBytes:    10,
	}

	payload := []byte("abcdefghijklmnopqrstuvwxyz")
	written, err := recorder.Write(payload)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != len(payload) {
		t.Fatalf("written bytes = %d, want %d", written, len(payload))
	}
	if recorder.bytesWritten != len(payload) {
		t.Fatalf("bytesWritten = %d, want %d", recorder.bytesWritten, len(payload))
	}
	if recorder.logBody.Len() != 10 {
		t.Fatalf("log body length = %d, want 10", recorder.logBody.Len())
	}
	if !recorder.truncated {
		t.Fatalf("expected truncated flag to be true")
	}
}

func TestStatusRecorderKeepsShortBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	recorder := &statusRecorder{ResponseWriter: c.Writer, statusCode: http.StatusOK, maxLogBytes: 64}

	recorder.WriteHeader(http.StatusTeapot)
	if _, err := recorder.Write([]byte(`{"error":"x"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if recorder.statusCode != http.StatusTeapot || recorder.truncated || recorder.logBody.String() != `{"error":"x"}` {
		t.Fatalf("unexpected recorder state: status=%d truncated=%v body=%q",
			recorder.statusCode, recorder.truncated, recorder.logBody.String())
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCORSOnlyWhenConfigured(t *testing.T) {
	for _, tt := range []struct {
		name    string
		origins []string
		want    string
	}{
		{name: "disabled", origins: nil, want: ""},
		{name: "allowed", origins: []string{"https://tales.example"}, want: "https://tales.example"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.origins)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil)
			req.Header.Set("Origin", "https://tales.example")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}
