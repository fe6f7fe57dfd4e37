// Package handlers defines HTTP-layer error codes used across all endpoints.
//
// Every error response carries one of these codes in the ErrorResponse
// envelope, next to the HTTP status and a human-readable message. Clients
// branch on the code, never on the message.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "no check-in recorded for code"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Check-in specific:
	ErrCodePersistFailed  = "persist_failed"
	ErrCodeLookupFailed   = "lookup_failed"
	ErrCodeListFailed     = "list_failed"
	ErrCodeDownloadFailed = "download_failed"
)
