// Check-in HTTP handlers.
//
// Endpoints:
//   - POST /upload                 structured check-in (JSON)
//   - GET  /upload?id=CODE         browser/QR check-in (HTML, or JSON with format=json)
//   - GET  /records/{code}/latest  latest record for a code
//   - GET  /files                  paginated storage keys
//   - GET  /files/{key}            raw stored record as a download
//
// Handlers are transport-thin: they extract fields, call the service and
// translate results and errors into HTTP responses.
package handlers

import (
	"context"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/domain"
	"github.com/tbourn/go-checkin-backend/internal/services"
)

// CheckinService is the core contract consumed by the handlers.
// *services.CheckinService implements it.
type CheckinService interface {
	Submit(ctx context.Context, sub checkin.Submission) (*services.SubmitResult, error)
	Lookup(ctx context.Context, code string) (*domain.Record, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Enumerate(ctx context.Context) ([]string, error)
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	svc CheckinService
}

// New constructs Handlers bound to svc.
func New(svc CheckinService) *Handlers {
	return &Handlers{svc: svc}
}

//
// DTOs
//

// UploadRequest is the structured check-in payload. Field names follow the
// scanners already in the field.
type UploadRequest struct {
	// ID is the scanned code.
	ID string `json:"id" example:"ABC123"`
	// Type optionally declares the user label.
	Type string `json:"type" example:"user1"`
	// Device names the scanner.
	Device string `json:"device" example:"scanner-1"`
	// Time is the client-side ISO-8601 send time.
	Time string `json:"time" example:"2025-09-01T08:00:00+03:00"`
}

// UploadResponse is the verdict returned to the scanner.
type UploadResponse struct {
	Status  string `json:"status" example:"ok" enums:"ok,error"`
	Allowed bool   `json:"allowed" example:"true"`
	Message string `json:"message" example:"on time"`
	// Name is the registry label, null for unknown codes.
	Name *string `json:"name" example:"user1"`
	// Key is the storage key of the persisted record.
	Key string `json:"key" example:"scan_20250901_080000_a1b2c3.json"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ListFilesResponse is one page of storage keys in chronological order.
type ListFilesResponse struct {
	Files      []string   `json:"files"`
	Pagination Pagination `json:"pagination"`
}

func uploadResponse(res *services.SubmitResult) UploadResponse {
	out := UploadResponse{
		Status:  res.Verdict.Status,
		Allowed: res.Verdict.Allowed,
		Message: res.Verdict.Message,
		Key:     res.Key,
	}
	if res.Verdict.Registered() {
		name := res.Verdict.Name
		out.Name = &name
	}
	return out
}
