package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/clock"
	"github.com/tbourn/go-checkin-backend/internal/config"
	"github.com/tbourn/go-checkin-backend/internal/http/handlers"
	"github.com/tbourn/go-checkin-backend/internal/registry"
	"github.com/tbourn/go-checkin-backend/internal/repo"
	"github.com/tbourn/go-checkin-backend/internal/services"
)

var msk = time.FixedZone("MSK", 3*60*60)

// --- real service over a temp directory store with a pinned clock ---
func newTestService(t *testing.T, now time.Time) *services.CheckinService {
	t.Helper()
	store, err := repo.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("dir store: %v", err)
	}
	b := checkin.NewBuilder(registry.Default(), msk)
	return services.NewCheckinService(store, b, clock.Fixed(now))
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:  "/api/v1",
		MaxBodyBytes: 1 << 10,
		LogRedact:    true,
		RateRPS:      100,
		RateBurst:    10,
		CORS:         config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:     config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:         config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newEngine(t *testing.T, cfg config.Config, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestService(t, now), cfg)
	return r
}

func serve(r http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newEngine(t, baseConfig(), time.Now())

	// /health works
	w := serve(r, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = serve(r, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404 envelope
	w = serve(r, http.MethodGet, "/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	var er handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != handlers.ErrCodeNotFound || er.RequestID == "" {
		t.Fatalf("bad 404 envelope: %s (%v)", w.Body.String(), err)
	}

	// NoMethod → 405 (POST /health, DELETE /upload)
	for _, tc := range []struct{ method, path string }{{http.MethodPost, "/health"}, {http.MethodDelete, "/upload"}} {
		w = serve(r, tc.method, tc.path, "", "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s expected 405, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newEngine(t, cfg, time.Now())

	// Any request runs through CORS middleware; header should reflect origin.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_limitBody_DisabledWhenNonPositive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(0))
	r.POST("/echo", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, string(b))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusOK || w.Body.String() != "0123456789AB" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

// A check-in posted on the legacy path is visible through the versioned API.
func TestPipeline_CheckinRoundTrip(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 20, 0, 0, msk)
	r := newEngine(t, baseConfig(), now)

	w := serve(r, http.MethodPost, "/upload", "application/json", `{"id":"ABC123","device":"gate-2","time":"2025-09-01T08:19:58+03:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /upload = %d %s", w.Code, w.Body.String())
	}
	var up handlers.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !up.Allowed || up.Name == nil || *up.Name != "user1" {
		t.Fatalf("08:20:00 must be on time: %+v", up)
	}
	if !strings.HasPrefix(up.Key, "scan_20250901_082000_") {
		t.Fatalf("key=%q", up.Key)
	}

	// latest
	w = serve(r, http.MethodGet, "/api/v1/records/ABC123/latest", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("latest = %d", w.Code)
	}
	var rec map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rec["device"] != "gate-2" || rec["onTime"] != true || rec["receivedAt"] != "2025-09-01T08:20:00.000000+03:00" {
		t.Fatalf("unexpected record: %v", rec)
	}

	// list
	w = serve(r, http.MethodGet, "/api/v1/files", "", "")
	var list handlers.ListFilesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(list.Files) != 1 || list.Files[0] != up.Key {
		t.Fatalf("files=%v", list.Files)
	}

	// download
	w = serve(r, http.MethodGet, "/api/v1/files/"+up.Key, "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"code": "ABC123"`) {
		t.Fatalf("download = %d %s", w.Code, w.Body.String())
	}

	// missing code
	w = serve(r, http.MethodGet, "/api/v1/records/XYZ789/latest", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("latest unknown = %d", w.Code)
	}
}

func TestPipeline_VersionedUploadAndLateVerdict(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 20, 1, 0, msk)
	r := newEngine(t, baseConfig(), now)

	w := serve(r, http.MethodGet, "/api/v1/upload?id=XYZ789&format=json", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/upload = %d", w.Code)
	}
	var up handlers.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatalf("json: %v", err)
	}
	if up.Allowed || up.Message != checkin.MessageLate {
		t.Fatalf("08:20:01 must be late: %+v", up)
	}
}

func TestPipeline_HTMLPageHeaders(t *testing.T) {
	r := newEngine(t, baseConfig(), time.Date(2025, 9, 1, 7, 0, 0, 0, msk))

	w := serve(r, http.MethodGet, "/upload?id=ABC123", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /upload = %d", w.Code)
	}
	if w.Header().Get("Content-Security-Policy") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers: %v", w.Header())
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestPipeline_BodyLimitReturns413(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxBodyBytes = 32
	r := newEngine(t, cfg, time.Now())

	body := `{"id":"ABC123","device":"` + strings.Repeat("d", 100) + `"}`
	w := serve(r, http.MethodPost, "/upload", "application/json", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/api/v1/files", "", "")
	var list handlers.ListFilesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Pagination.Total != 0 {
		t.Fatalf("oversized body must not be stored, total=%d", list.Pagination.Total)
	}
}

func TestPipeline_RateLimitPerDevice(t *testing.T) {
	cfg := baseConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r := newEngine(t, cfg, time.Now())

	hit := func(device string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set("X-Device-ID", device)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	if c := hit("a"); c != http.StatusOK {
		t.Fatalf("first = %d", c)
	}
	if c := hit("a"); c != http.StatusTooManyRequests {
		t.Fatalf("second = %d", c)
	}
	if c := hit("b"); c != http.StatusOK {
		t.Fatalf("other device = %d", c)
	}
	// health stays reachable
	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
			t.Fatalf("health limited: %d", w.Code)
		}
	}
}

func TestPipeline_Gzip(t *testing.T) {
	r := newEngine(t, baseConfig(), time.Now())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding=%q", got)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := baseConfig()
	cfg.SwaggerEnabled = true
	r := newEngine(t, cfg, time.Now())

	w := serve(r, http.MethodGet, "/swagger/doc.json", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/records/{code}/latest") {
		t.Fatalf("doc.json missing routes: %s", w.Body.String())
	}

	cfg.SwaggerEnabled = false
	r = newEngine(t, cfg, time.Now())
	if w := serve(r, http.MethodGet, "/swagger/doc.json", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled, got %d", w.Code)
	}
}
