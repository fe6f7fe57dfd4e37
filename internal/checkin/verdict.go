package checkin

import "github.com/tbourn/go-checkin-backend/internal/domain"

// Verdict statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Verdict messages.
const (
	MessageOnTime   = "on time"
	MessageLate     = "late"
	MessageNotFound = "code not found"
)

// Verdict is what the submitter is told about a check-in.
type Verdict struct {
	Status  string `json:"status"`
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
	// Name is the registry label of the code, empty for unknown codes.
	Name string `json:"name,omitempty"`
}

// Registered reports whether the verdict was issued for a known code.
func (v Verdict) Registered() bool { return v.Status == StatusOK }

// Registry is the read-only code lookup the classifier depends on.
type Registry interface {
	Lookup(code string) (label string, ok bool)
}

// Classify derives the verdict for rec. Allowed requires both a registered
// code and an on-time receipt; unknown codes are never allowed.
func Classify(rec domain.Record, reg Registry) Verdict {
	name, ok := lookup(reg, rec.Code)
	switch {
	case !ok:
		return Verdict{Status: StatusError, Allowed: false, Message: MessageNotFound}
	case rec.OnTime:
		return Verdict{Status: StatusOK, Allowed: true, Message: MessageOnTime, Name: name}
	default:
		return Verdict{Status: StatusOK, Allowed: false, Message: MessageLate, Name: name}
	}
}

func lookup(reg Registry, code string) (string, bool) {
	if reg == nil {
		return "", false
	}
	return reg.Lookup(code)
}
