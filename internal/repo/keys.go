package repo

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

const (
	keyPrefix    = "scan_"
	keySuffix    = ".json"
	keyTimestamp = "20060102_150405"

	// maxKeyAttempts bounds key generation: one retry after a collision.
	maxKeyAttempts = 2

	// keyOrderSlack is how far a later key's wall clock may run behind an
	// earlier one. Local keys step back by the zone shift when daylight
	// saving ends; no zone shifts by more than two hours.
	keyOrderSlack = 3 * time.Hour
)

var keyRE = regexp.MustCompile(`^scan_\d{8}_\d{6}_[0-9a-f]{6}\.json$`)

// randomSuffix returns six lowercase hex characters. Replaced in tests.
var randomSuffix = func() string {
	u := uuid.New()
	return hex.EncodeToString(u[:3])
}

// NewKey names a unit received at t: scan_YYYYMMDD_HHMMSS_xxxxxx.json.
// Keys sort lexicographically by receipt second.
func NewKey(t time.Time) string {
	return keyPrefix + t.Format(keyTimestamp) + "_" + randomSuffix() + keySuffix
}

// ValidKey reports whether key has the shape produced by NewKey.
func ValidKey(key string) bool { return keyRE.MatchString(key) }

// keySecond is the receipt-second part of a valid key.
func keySecond(key string) string {
	return key[len(keyPrefix) : len(keyPrefix)+len(keyTimestamp)]
}

// keyWallClock reads the wall-clock receipt second of a valid key, without
// a zone.
func keyWallClock(key string) (time.Time, error) {
	return time.Parse(keyTimestamp, keySecond(key))
}

// putFunc stores doc under key exclusively, returning ErrKeyExists when the
// key is taken.
type putFunc func(ctx context.Context, key string, doc []byte) error

// appendUnique encodes rec and stores it under a fresh key, regenerating the
// key once on collision. The receipt time names the key; a record whose
// receivedAt does not parse is rejected.
func appendUnique(ctx context.Context, rec domain.Record, put putFunc) (string, error) {
	received, err := rec.ReceivedTime()
	if err != nil {
		return "", err
	}
	doc, err := domain.EncodeRecord(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		key := NewKey(received)
		err := put(ctx, key, doc)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrKeyExists) {
			return "", err
		}
		log.Warn().Str("key", key).Int("attempt", attempt).Msg("storage key collision")
	}
	return "", ErrKeyCollision
}

// loadFunc reads and decodes the unit stored under key.
type loadFunc func(ctx context.Context, key string) (domain.Record, error)

// latestByScan walks keys newest first and returns the latest record for code.
// Key order only approximates receipt order: keys resolve to the second and
// carry local wall-clock time, which repeats an hour when daylight saving
// ends. Once a match is found, keys within keyOrderSlack of it are still
// compared by receivedAt. Units that fail to load are skipped.
func latestByScan(ctx context.Context, keys []string, code string, load loadFunc) (*domain.Record, error) {
	sorted := make([]string, 0, len(keys))
	for _, k := range keys {
		if ValidKey(k) {
			sorted = append(sorted, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	var (
		best     *domain.Record
		bestAt   time.Time
		bestWall time.Time
	)
	for _, key := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wall, err := keyWallClock(key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unreadable record")
			continue
		}
		if best != nil && bestWall.Sub(wall) > keyOrderSlack {
			break
		}
		rec, err := load(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unreadable record")
			continue
		}
		if rec.Code != code {
			continue
		}
		at, err := rec.ReceivedTime()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unreadable record")
			continue
		}
		if best == nil || at.After(bestAt) {
			r := rec
			best, bestAt, bestWall = &r, at, wall
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}
