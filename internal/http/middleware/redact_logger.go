// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the default access logger. QR codes
// arrive in the "id" query parameter of browser check-ins, so named query
// parameters are masked outright; everything else is scrubbed for emails,
// phone numbers and UUIDs. Bodies are never logged.
package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const redacted = "[REDACTED]"

// RedactOptions configures RedactingLogger.
//
// MaskHeaders adds header names (case-insensitive) to the built-in set
// Authorization, Cookie and Set-Cookie. MaskQueryParams names query
// parameters whose values are always masked; nil means {"id"}.
type RedactOptions struct {
	MaskHeaders     []string
	MaskQueryParams []string
}

var (
	// UUIDs go first so the phone pattern cannot eat their digit groups.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// redactQuery masks the values of the named parameters and scrubs the rest,
// keeping parameter order and encoding.
func redactQuery(raw string, masked map[string]struct{}) string {
	if raw == "" {
		return raw
	}
	parts := strings.Split(raw, "&")
	for i, p := range parts {
		k, _, _ := strings.Cut(p, "=")
		if name, err := url.QueryUnescape(k); err == nil {
			if _, ok := masked[strings.ToLower(name)]; ok {
				parts[i] = k + "=" + redacted
				continue
			}
		}
		parts[i] = scrub(p)
	}
	return strings.Join(parts, "&")
}

func lowerSet(base []string, extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(base)+len(extra))
	for _, v := range append(append([]string{}, base...), extra...) {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// RedactingLogger logs one line per request with method, route, scrubbed
// query, scrubbed request headers, status, size and latency. It also installs
// the request-scoped logger returned by LoggerFrom.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := lowerSet([]string{"authorization", "cookie", "set-cookie"}, opts.MaskHeaders)
	params := opts.MaskQueryParams
	if params == nil {
		params = []string{"id"}
	}
	maskParams := lowerSet(params, nil)

	return func(c *gin.Context) {
		start := time.Now()

		l := requestLogger(c)
		c.Set(loggerKey, &l)

		query := truncate(redactQuery(c.Request.URL.RawQuery, maskParams), maxQueryLogLength)
		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				headers[k] = redacted
				continue
			}
			headers[k] = scrub(strings.Join(vv, ", "))
		}

		c.Next()

		ev := l.With().
			Str("query", query).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Logger()
		logAtLevel(c, &ev, "http_request")
	}
}
