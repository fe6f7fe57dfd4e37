package repo

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

var msk = time.FixedZone("MSK", 3*3600)

func recordAt(code string, t time.Time) domain.Record {
	return domain.Record{
		Code:       code,
		UserLabel:  "user1",
		Device:     "scanner-1",
		SentAt:     domain.FormatTimestamp(t),
		ReceivedAt: domain.FormatTimestamp(t),
		OnTime:     true,
	}
}

// withSuffixes makes randomSuffix return the given values in order, then
// falls back to the real generator.
func withSuffixes(t *testing.T, values ...string) {
	t.Helper()
	orig := randomSuffix
	var mu sync.Mutex
	randomSuffix = func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(values) == 0 {
			return orig()
		}
		v := values[0]
		values = values[1:]
		return v
	}
	t.Cleanup(func() { randomSuffix = orig })
}

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 8, 0, 0, 0, msk)

	t.Run("append then fetch round trip", func(t *testing.T) {
		s := newStore(t)
		rec := recordAt("ABC123", base)
		key, err := s.Append(ctx, rec)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if !ValidKey(key) || keySecond(key) != "20250901_080000" {
			t.Fatalf("unexpected key %q", key)
		}
		raw, err := s.Fetch(ctx, key)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		want, _ := domain.EncodeRecord(rec)
		if !bytes.Equal(raw, want) {
			t.Fatalf("fetched bytes differ:\n%s\nwant:\n%s", raw, want)
		}
		got, err := s.FindLatestByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("FindLatestByCode: %v", err)
		}
		if *got != rec {
			t.Fatalf("latest = %+v; want %+v", *got, rec)
		}
	})

	t.Run("latest wins across seconds", func(t *testing.T) {
		s := newStore(t)
		older := recordAt("ABC123", base)
		newer := recordAt("ABC123", base.Add(25*time.Minute))
		newer.OnTime = false
		other := recordAt("XYZ789", base.Add(time.Hour))
		for _, r := range []domain.Record{newer, older, other} {
			if _, err := s.Append(ctx, r); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
		got, err := s.FindLatestByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("FindLatestByCode: %v", err)
		}
		if *got != newer {
			t.Fatalf("latest = %+v; want %+v", *got, newer)
		}
	})

	t.Run("latest wins within one second", func(t *testing.T) {
		// The later record gets the lexicographically smaller suffix.
		withSuffixes(t, "ffffff", "000000")
		s := newStore(t)
		first := recordAt("ABC123", base.Add(100*time.Millisecond))
		second := recordAt("ABC123", base.Add(900*time.Millisecond))
		second.Device = "scanner-2"
		if _, err := s.Append(ctx, first); err != nil {
			t.Fatalf("Append first: %v", err)
		}
		if _, err := s.Append(ctx, second); err != nil {
			t.Fatalf("Append second: %v", err)
		}
		got, err := s.FindLatestByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("FindLatestByCode: %v", err)
		}
		if got.Device != "scanner-2" {
			t.Fatalf("latest device = %q; want scanner-2", got.Device)
		}
	})

	t.Run("latest wins across a daylight saving fall-back", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		if err != nil {
			t.Fatalf("load zone: %v", err)
		}
		s := newStore(t)
		// 02:30 CEST, then 02:10 CET forty minutes later.
		summer := time.Date(2024, 10, 27, 0, 30, 0, 0, time.UTC).In(berlin)
		winter := summer.Add(40 * time.Minute)
		for _, at := range []time.Time{summer, winter} {
			if _, err := s.Append(ctx, recordAt("ABC123", at)); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
		got, err := s.FindLatestByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("FindLatestByCode: %v", err)
		}
		if want := domain.FormatTimestamp(winter); got.ReceivedAt != want {
			t.Fatalf("latest receivedAt = %s; want %s", got.ReceivedAt, want)
		}
	})

	t.Run("missing code and key", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.FindLatestByCode(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("FindLatestByCode err = %v; want ErrNotFound", err)
		}
		if _, err := s.Fetch(ctx, "scan_20250101_000000_abcdef.json"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Fetch err = %v; want ErrNotFound", err)
		}
		if _, err := s.Fetch(ctx, "../etc/passwd"); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Fetch err = %v; want ErrInvalidKey", err)
		}
	})

	t.Run("collision retries once then fails", func(t *testing.T) {
		s := newStore(t)
		withSuffixes(t, "aaaaaa", "aaaaaa", "bbbbbb", "aaaaaa", "bbbbbb")
		rec := recordAt("ABC123", base)

		k1, err := s.Append(ctx, rec)
		if err != nil || k1 != "scan_20250901_080000_aaaaaa.json" {
			t.Fatalf("first append: key=%q err=%v", k1, err)
		}
		k2, err := s.Append(ctx, rec)
		if err != nil || k2 != "scan_20250901_080000_bbbbbb.json" {
			t.Fatalf("retry append: key=%q err=%v", k2, err)
		}
		if _, err := s.Append(ctx, rec); !errors.Is(err, ErrKeyCollision) {
			t.Fatalf("double collision err = %v; want ErrKeyCollision", err)
		}
		keys, _ := s.ListAll(ctx)
		if len(keys) != 2 {
			t.Fatalf("expected 2 stored units, got %v", keys)
		}
	})

	t.Run("unparseable receipt time rejected", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Append(ctx, domain.Record{Code: "ABC123", ReceivedAt: "noon"}); !errors.Is(err, domain.ErrMalformedRecord) {
			t.Fatalf("err = %v; want ErrMalformedRecord", err)
		}
	})

	t.Run("concurrent appends are all kept", func(t *testing.T) {
		s := newStore(t)
		const n = 16
		var wg sync.WaitGroup
		keys := make([]string, n)
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				keys[i], errs[i] = s.Append(ctx, recordAt("ABC123", base.Add(time.Duration(i)*time.Microsecond)))
			}(i)
		}
		wg.Wait()
		for i, err := range errs {
			if err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
		}
		listed, err := s.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		sort.Strings(keys)
		sort.Strings(listed)
		if len(listed) != n {
			t.Fatalf("listed %d keys; want %d", len(listed), n)
		}
		for i := range keys {
			if keys[i] != listed[i] {
				t.Fatalf("listed keys differ from appended keys: %v vs %v", listed, keys)
			}
		}
		got, err := s.FindLatestByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("FindLatestByCode: %v", err)
		}
		if want := domain.FormatTimestamp(base.Add((n - 1) * time.Microsecond)); got.ReceivedAt != want {
			t.Fatalf("latest receivedAt = %s; want %s", got.ReceivedAt, want)
		}
	})
}
