// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the structured request logger. It
// never logs request or response bodies, and it scrubs obvious personal
// identifiers from query strings and header values before the log line is
// emitted. Account emails flow through this API on registration and update,
// so the scrubbing is not optional.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions extends the built-in header mask. Names in MaskHeaders are
// matched case-insensitively and their values replaced wholesale with
// "[REDACTED]", on top of the always-masked Authorization, Cookie, and
// Set-Cookie headers.
type RedactOptions struct {
	MaskHeaders []string
}

// scrubPattern pairs a compiled matcher with its replacement token. Order in
// the slice matters: the UUID pattern must run before the phone pattern,
// otherwise the digit runs inside a UUID get mistaken for phone numbers.
type scrubPattern struct {
	re   *regexp.Regexp
	repl string
}

func newScrubPatterns() []scrubPattern {
	return []scrubPattern{
		{regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`), "[REDACTED:id]"},
		{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
		// Digits-only so hex segments never match. Covers forms like
		// "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
		{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
	}
}

// RedactingLogger returns a middleware that logs one structured line per
// request: method, route path, scrubbed query, status, response size,
// latency, scrubbed headers, and the request id. Severity follows the
// status: info below 400, warn for 4xx, error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	patterns := newScrubPatterns()
	scrub := func(s string) string {
		for _, p := range patterns {
			if s == "" {
				break
			}
			s = p.re.ReplaceAllString(s, p.repl)
		}
		return s
	}

	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := scrub(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, hide := masked[strings.ToLower(k)]; hide {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = scrub(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
