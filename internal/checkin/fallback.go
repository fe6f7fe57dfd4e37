package checkin

import (
	"strings"
	"time"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

// rule yields a field value when it can; the first rule that reports ok wins.
type rule func(sub Submission, now time.Time, reg Registry) (string, bool)

func resolve(sub Submission, now time.Time, reg Registry, rules []rule) string {
	for _, r := range rules {
		if v, ok := r(sub, now, reg); ok {
			return v
		}
	}
	return ""
}

// Precedence per record field.
var (
	labelRules  = []rule{declaredLabel, registryLabel, literal(domain.UnknownValue)}
	deviceRules = []rule{declaredDevice, literal(domain.UnknownValue)}
	sentAtRules = []rule{clientTimestamp, receiptTime}
)

func declaredLabel(sub Submission, _ time.Time, _ Registry) (string, bool) {
	v := strings.TrimSpace(sub.DeclaredLabel)
	if v == "" || v == domain.UnknownValue {
		return "", false
	}
	return v, true
}

func registryLabel(sub Submission, _ time.Time, reg Registry) (string, bool) {
	label, ok := lookup(reg, normalizeCode(sub.Code))
	if !ok || label == "" {
		return "", false
	}
	return label, true
}

func declaredDevice(sub Submission, _ time.Time, _ Registry) (string, bool) {
	v := strings.TrimSpace(sub.Device)
	return v, v != ""
}

func clientTimestamp(sub Submission, _ time.Time, _ Registry) (string, bool) {
	v := strings.TrimSpace(sub.ClientTimestamp)
	return v, v != ""
}

func receiptTime(_ Submission, now time.Time, _ Registry) (string, bool) {
	return domain.FormatTimestamp(now), true
}

func literal(v string) rule {
	return func(Submission, time.Time, Registry) (string, bool) { return v, true }
}
