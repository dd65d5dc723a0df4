package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/observability"
	"github.com/yungbote/codemaster-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, strings.Repeat("t", maxHeaderIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" {
		t.Fatalf("trace data: %+v", seen)
	}
	if seen.TraceID == "" || len(seen.TraceID) > maxHeaderIDLen {
		t.Fatalf("oversized trace id should be replaced, got %q", seen.TraceID)
	}
	if rec.Header().Get(headerRequestID) != "req-1" || rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("headers: %v", rec.Header())
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/content/export/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"go", "rust"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/content/export/"+id, nil))
	}

	var buf strings.Builder
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	want := `cm_api_requests_total{method="GET",route="/api/content/export/:id",status="404"} 2`
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("missing %q in:\n%s", want, buf.String())
	}
}

func TestMetricsMiddlewareUnmatchedAndScrapes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/metrics", gin.WrapF(m.WriteHTTP))

	for _, path := range []string{"/nope", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	var buf strings.Builder
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `cm_api_requests_total{method="GET",route="unmatched",status="404"} 1`) {
		t.Fatalf("unmatched request not counted:\n%s", out)
	}
	if strings.Contains(out, `route="/metrics"`) {
		t.Fatalf("scrapes should not be counted:\n%s", out)
	}
}
