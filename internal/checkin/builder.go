package checkin

import (
	"strings"
	"time"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

// Submission is the transport-neutral input of a check-in.
type Submission struct {
	Code            string
	DeclaredLabel   string
	Device          string
	ClientTimestamp string
}

// Builder assembles Records and Verdicts from submissions.
type Builder struct {
	registry Registry
	loc      *time.Location
}

// NewBuilder returns a Builder that resolves labels through reg and reads
// receipt instants in loc (UTC when nil).
func NewBuilder(reg Registry, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{registry: reg, loc: loc}
}

// Location is the civil time zone used for receipt timestamps.
func (b *Builder) Location() *time.Location { return b.loc }

// Build produces the record for sub received at now, and its verdict.
// It is total: absent fields take their defaults.
func (b *Builder) Build(sub Submission, now time.Time) (domain.Record, Verdict) {
	now = now.In(b.loc)
	rec := domain.Record{
		Code:       normalizeCode(sub.Code),
		UserLabel:  resolve(sub, now, b.registry, labelRules),
		Device:     resolve(sub, now, b.registry, deviceRules),
		SentAt:     resolve(sub, now, b.registry, sentAtRules),
		ReceivedAt: domain.FormatTimestamp(now),
		OnTime:     OnTime(now, b.loc),
	}
	return rec, Classify(rec, b.registry)
}

// Classify derives the verdict for a stored record using the builder's registry.
func (b *Builder) Classify(rec domain.Record) Verdict { return Classify(rec, b.registry) }

func normalizeCode(code string) string { return strings.TrimSpace(code) }
