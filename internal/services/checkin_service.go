package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/clock"
	"github.com/tbourn/go-checkin-backend/internal/domain"
	"github.com/tbourn/go-checkin-backend/internal/observability"
	"github.com/tbourn/go-checkin-backend/internal/repo"
)

// RecordStore is the storage contract CheckinService depends on.
// repo.Store satisfies it.
type RecordStore interface {
	Append(ctx context.Context, rec domain.Record) (string, error)
	FindLatestByCode(ctx context.Context, code string) (*domain.Record, error)
	ListAll(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// SubmitResult is the outcome of one accepted check-in.
type SubmitResult struct {
	Record  domain.Record
	Verdict checkin.Verdict
	Key     string
}

// CheckinService classifies submissions and persists them.
type CheckinService struct {
	Store   RecordStore
	Builder *checkin.Builder
	Clock   clock.Clock
}

// NewCheckinService wires a service. A nil clock reads the wall clock in the
// builder's zone.
func NewCheckinService(store RecordStore, b *checkin.Builder, c clock.Clock) *CheckinService {
	if c == nil {
		c = clock.NewZoned(b.Location())
	}
	return &CheckinService{Store: store, Builder: b, Clock: c}
}

// Submit builds the record for sub at the current instant, stores it and
// returns it with its verdict. Unknown codes are stored too; they are only
// marked as not allowed. Any store failure is reported as ErrPersist.
func (s *CheckinService) Submit(ctx context.Context, sub checkin.Submission) (*SubmitResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "checkin.submit")
	defer span.End()

	rec, verdict := s.Builder.Build(sub, s.Clock.Now())
	key, err := s.Store.Append(ctx, rec)
	if err != nil {
		observability.RecordStoreError("append")
		spanError(span, err)
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	observability.RecordCheckin(verdict.Status, verdict.Allowed)
	span.SetAttributes(
		attribute.String("checkin.key", key),
		attribute.String("checkin.status", verdict.Status),
		attribute.Bool("checkin.allowed", verdict.Allowed),
	)
	return &SubmitResult{Record: rec, Verdict: verdict, Key: key}, nil
}

// Lookup returns the most recently received record for code.
func (s *CheckinService) Lookup(ctx context.Context, code string) (*domain.Record, error) {
	ctx, span := observability.Tracer().Start(ctx, "checkin.lookup")
	defer span.End()

	rec, err := s.Store.FindLatestByCode(ctx, code)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrRecordNotFound
	case err != nil:
		observability.RecordStoreError("lookup")
		spanError(span, err)
		return nil, err
	}
	return rec, nil
}

// Download returns the stored unit for key byte for byte.
func (s *CheckinService) Download(ctx context.Context, key string) ([]byte, error) {
	if !repo.ValidKey(key) {
		return nil, ErrInvalidKey
	}
	ctx, span := observability.Tracer().Start(ctx, "checkin.download")
	defer span.End()

	raw, err := s.Store.Fetch(ctx, key)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrFileNotFound
	case errors.Is(err, repo.ErrInvalidKey):
		return nil, ErrInvalidKey
	case err != nil:
		observability.RecordStoreError("fetch")
		spanError(span, err)
		return nil, err
	}
	return raw, nil
}

// Enumerate lists every storage key in ascending (chronological) order.
func (s *CheckinService) Enumerate(ctx context.Context) ([]string, error) {
	ctx, span := observability.Tracer().Start(ctx, "checkin.enumerate")
	defer span.End()

	keys, err := s.Store.ListAll(ctx)
	if err != nil {
		observability.RecordStoreError("list")
		spanError(span, err)
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Classify returns the verdict for a record without storing anything.
func (s *CheckinService) Classify(rec domain.Record) checkin.Verdict {
	return s.Builder.Classify(rec)
}

func spanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
