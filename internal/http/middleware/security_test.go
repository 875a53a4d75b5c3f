package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// securityProbe runs one request through SecurityHeaders and returns the
// response headers. pre, when non-nil, runs before the middleware, standing
// in for RequestID or CORS having already written headers.
func securityProbe(t *testing.T, opts SecurityOptions, pre gin.HandlerFunc, mutate func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opts))
	r.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_BaselineOnly(t *testing.T) {
	h := securityProbe(t, SecurityOptions{}, func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-1")
		c.Next()
	}, nil)

	for hdr, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := h.Get(hdr); got != want {
			t.Errorf("%s = %q, want %q", hdr, got, want)
		}
	}

	// With every option off, only the baseline set may appear.
	for _, hdr := range []string{
		"Permissions-Policy",
		"X-Permitted-Cross-Domain-Policies",
		"Cache-Control",
		"Pragma",
		"Expires",
		"Strict-Transport-Security",
	} {
		if got := h.Get(hdr); got != "" {
			t.Errorf("%s = %q, want unset", hdr, got)
		}
	}

	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
		t.Errorf("Access-Control-Expose-Headers = %q, want X-Request-ID", got)
	}
}

func TestSecurityHeaders_ExposeHeaderMerging(t *testing.T) {
	cases := []struct {
		name     string
		existing string
		want     string
	}{
		{"added when absent", "", "X-Request-ID"},
		{"appended to others", "Foo", "Foo, X-Request-ID"},
		{"not duplicated", "X-Request-ID, Foo", "X-Request-ID, Foo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := securityProbe(t, SecurityOptions{}, func(c *gin.Context) {
				c.Header("X-Request-ID", "rid-2")
				if tc.existing != "" {
					c.Header("Access-Control-Expose-Headers", tc.existing)
				}
				c.Next()
			}, nil)
			if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("Access-Control-Expose-Headers = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_PolicyCacheAndHSTS(t *testing.T) {
	h := securityProbe(t, SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}, nil, func(req *http.Request) {
		req.TLS = &tls.ConnectionState{}
	})

	if h.Get("Permissions-Policy") == "" {
		t.Error("Permissions-Policy unset")
	}
	if got := h.Get("X-Permitted-Cross-Domain-Policies"); got != "none" {
		t.Errorf("X-Permitted-Cross-Domain-Policies = %q, want none", got)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Errorf("cache headers = %q/%q/%q", h.Get("Cache-Control"), h.Get("Pragma"), h.Get("Expires"))
	}
	if got, want := h.Get("Strict-Transport-Security"), "max-age=86400; includeSubDomains; preload"; got != want {
		t.Errorf("Strict-Transport-Security = %q, want %q", got, want)
	}
}

func TestSecurityHeaders_HSTSGatedOnHTTPS(t *testing.T) {
	opts := SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}

	// Plain HTTP never gets HSTS.
	if h := securityProbe(t, opts, nil, nil); h.Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS set on plain HTTP: %q", h.Get("Strict-Transport-Security"))
	}

	// Terminated TLS behind a proxy is detected through X-Forwarded-Proto.
	h := securityProbe(t, opts, nil, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https")
	})
	if got, want := h.Get("Strict-Transport-Security"), "max-age=3600; includeSubDomains; preload"; got != want {
		t.Errorf("Strict-Transport-Security = %q, want %q", got, want)
	}
}

func Test_isHTTPS(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(plain) {
		t.Error("plain request reported as https")
	}

	direct := httptest.NewRequest(http.MethodGet, "/", nil)
	direct.TLS = &tls.ConnectionState{}
	if !isHTTPS(direct) {
		t.Error("TLS request not reported as https")
	}

	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	if !isHTTPS(proxied) {
		t.Error("X-Forwarded-Proto=https not reported as https")
	}
}
