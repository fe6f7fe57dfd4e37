package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/domain"
	"github.com/tbourn/go-checkin-backend/internal/services"
)

// ---------- stub service ----------

type stubService struct {
	mu        sync.Mutex
	submitted []checkin.Submission

	submitErr error
	lookup    func(code string) (*domain.Record, error)
	download  func(key string) ([]byte, error)
	enumerate func() ([]string, error)
}

var registered = map[string]string{"ABC123": "user1", "XYZ789": "user2"}

// Submit mimics the real service: codes are trimmed before the registry
// lookup and registered codes are on time.
func (s *stubService) Submit(_ context.Context, sub checkin.Submission) (*services.SubmitResult, error) {
	s.mu.Lock()
	s.submitted = append(s.submitted, sub)
	s.mu.Unlock()
	if s.submitErr != nil {
		return nil, s.submitErr
	}

	code := strings.TrimSpace(sub.Code)
	rec := domain.Record{Code: code, ReceivedAt: "2025-09-01T08:00:00.000000+03:00"}
	v := checkin.Verdict{Status: checkin.StatusError, Message: checkin.MessageNotFound}
	if name, ok := registered[code]; ok {
		rec.UserLabel = name
		rec.OnTime = true
		v = checkin.Verdict{Status: checkin.StatusOK, Allowed: true, Message: checkin.MessageOnTime, Name: name}
	}
	return &services.SubmitResult{Record: rec, Verdict: v, Key: "scan_20250901_080000_abcdef.json"}, nil
}

func (s *stubService) Lookup(_ context.Context, code string) (*domain.Record, error) {
	if s.lookup == nil {
		return nil, services.ErrRecordNotFound
	}
	return s.lookup(code)
}

func (s *stubService) Download(_ context.Context, key string) ([]byte, error) {
	if s.download == nil {
		return nil, services.ErrFileNotFound
	}
	return s.download(key)
}

func (s *stubService) Enumerate(context.Context) ([]string, error) {
	if s.enumerate == nil {
		return nil, nil
	}
	return s.enumerate()
}

func (s *stubService) submissions() []checkin.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]checkin.Submission(nil), s.submitted...)
}

var errBoom = errors.New("boom")

// ---------- engine helpers ----------

func newTestEngine(svc CheckinService, mws ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mws...)
	h := New(svc)
	r.POST("/upload", h.PostUpload)
	r.GET("/upload", h.GetUpload)
	r.GET("/records/:code/latest", h.LatestRecord)
	r.GET("/files", h.ListFiles)
	r.GET("/files/:key", h.DownloadFile)
	return r
}

func do(r http.Handler, method, target, contentType string, body io.Reader, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/upload", "application/json", strings.NewReader(body))
}
