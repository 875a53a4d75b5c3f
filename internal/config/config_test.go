package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestMain keeps stray environment from the host out of the assertions.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Unsetenv("JWT_SECRET")
	os.Exit(m.Run())
}

// withSecret satisfies the one required variable so each test only has to
// set what it is actually probing.
func withSecret(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
}

func errContains(err error, sub string) bool {
	return err != nil && strings.Contains(err.Error(), sub)
}

func TestLoad_Defaults(t *testing.T) {
	withSecret(t)
	t.Setenv("DB_PATH", "db.sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 24h", cfg.JWTExpiry)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %q, want uploads", cfg.UploadDir)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 50<<20)
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	withSecret(t)

	for k, v := range map[string]string{
		"PORT":                "8088",
		"READ_TIMEOUT":        "2s",
		"READ_HEADER_TIMEOUT": "1s",
		"WRITE_TIMEOUT":       "3s",
		"IDLE_TIMEOUT":        "4s",
		"MAX_HEADER_BYTES":    "8192",
		"GIN_MODE":            "weird",   // unknown mode collapses to release
		"LOG_LEVEL":           "warning", // alias collapses to warn
		"LOG_PRETTY":          "yes",
		"SWAGGER_ENABLED":     "on",
		"API_BASE_PATH":       "api/v1/", // slashes get normalized
		"DB_PATH":             "db.sqlite",
		"JWT_EXPIRY":          "12h",
		"UPLOAD_DIR":          "media-files",
		"MAX_UPLOAD_BYTES":    "1048576",
		"RATE_RPS":            "x",    // unparsable, keeps default 5.0
		"RATE_BURST":          "nope", // unparsable, keeps default 10
		"CORS_ALLOWED_ORIGINS": " https://a.com , , http://b ",
		"ENABLE_HSTS":          "TRUE",
		"HSTS_MAX_AGE":         "24h",
		"OTEL_ENABLED":         "1",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4317",
		"OTEL_EXPORTER_OTLP_INSECURE": "0",
		"OTEL_SERVICE_NAME":           "svc",
		"OTEL_TRACES_SAMPLER_ARG":     "0.75",
	} {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" || cfg.MaxHeaderBytes != 8192 {
		t.Errorf("server sizing: %+v", cfg)
	}
	if cfg.ReadTimeout != 2*time.Second || cfg.ReadHeaderTimeout != time.Second ||
		cfg.WriteTimeout != 3*time.Second || cfg.IdleTimeout != 4*time.Second {
		t.Errorf("timeouts: %+v", cfg)
	}
	if cfg.GinMode != "release" || cfg.LogLevel != "warn" {
		t.Errorf("mode/level normalization: GinMode=%q LogLevel=%q", cfg.GinMode, cfg.LogLevel)
	}
	if !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Errorf("truthy flags: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.DBPath != "db.sqlite" || cfg.JWTSecret != "test-secret" || cfg.JWTExpiry != 12*time.Hour {
		t.Errorf("db/auth: %+v", cfg)
	}
	if cfg.UploadDir != "media-files" || cfg.MaxUploadBytes != 1048576 {
		t.Errorf("uploads: %+v", cfg)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate defaults after bad parse: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if want := []string{"https://a.com", "http://b"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("cors origins = %#v, want %#v", cfg.CORS.AllowedOrigins, want)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Errorf("security: %+v", cfg.Security)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Errorf("otel: %+v", cfg.OTEL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantSub string
	}{
		{"blank port", "PORT", "   ", "PORT must not be empty"},
		{"zero read timeout", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"zero max header bytes", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"blank db path", "DB_PATH", "   ", "DB_PATH must not be empty"},
		{"zero jwt expiry", "JWT_EXPIRY", "0s", "JWT_EXPIRY"},
		{"blank upload dir", "UPLOAD_DIR", "   ", "UPLOAD_DIR must not be empty"},
		{"negative rate rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero rate burst", "RATE_BURST", "0", "RATE_BURST"},
		{"negative hsts age", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"sample ratio above one", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
		{"unknown log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withSecret(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); !errContains(err, tc.wantSub) {
				t.Fatalf("Load() err = %v, want substring %q", err, tc.wantSub)
			}
		})
	}

	t.Run("missing jwt secret", func(t *testing.T) {
		if _, err := Load(); !errContains(err, "JWT_SECRET must not be empty") {
			t.Fatalf("Load() err = %v, want JWT_SECRET error", err)
		}
	})

	// API_BASE_PATH never fails validation: normalizeBasePath always yields
	// a leading slash, and empty input becomes "/".
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on invalid config", func(t *testing.T) {
		withSecret(t)
		t.Setenv("LOG_LEVEL", "verbose")
		defer func() {
			if recover() == nil {
				t.Fatal("MustLoad did not panic")
			}
		}()
		_ = MustLoad()
	})

	t.Run("returns config when valid", func(t *testing.T) {
		withSecret(t)
		cfg := MustLoad()
		if cfg.APIBasePath == "" {
			t.Fatal("empty config from MustLoad")
		}
	})
}

func Test_envHelpers(t *testing.T) {
	t.Setenv("H_EMPTY", "")
	t.Setenv("H_STR", "val")
	if getenv("H_EMPTY", "d") != "d" || getenv("H_STR", "d") != "val" {
		t.Error("getenv fallback or read failed")
	}

	t.Setenv("H_F", "3.14")
	t.Setenv("H_F_BAD", "nope")
	if getfloat("H_F", 0) != 3.14 || getfloat("H_F_BAD", 1.23) != 1.23 {
		t.Error("getfloat parse or fallback failed")
	}

	t.Setenv("H_I", "42")
	t.Setenv("H_I_BAD", "x")
	if getint("H_I", 0) != 42 || getint("H_I_BAD", 7) != 7 {
		t.Error("getint parse or fallback failed")
	}

	t.Setenv("H_I64", "5368709120")
	t.Setenv("H_I64_BAD", "x")
	if getint64("H_I64", 0) != 5368709120 || getint64("H_I64_BAD", 9) != 9 {
		t.Error("getint64 parse or fallback failed")
	}

	t.Setenv("H_D", "150ms")
	t.Setenv("H_D_BAD", "zzz")
	if getdur("H_D", time.Second) != 150*time.Millisecond || getdur("H_D_BAD", 2*time.Second) != 2*time.Second {
		t.Error("getdur parse or fallback failed")
	}
}

func Test_getbool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		key := fmt.Sprintf("B_TRUE_%d", i)
		t.Setenv(key, v)
		if !getbool(key, false) {
			t.Errorf("getbool(%q) = false, want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		key := fmt.Sprintf("B_FALSE_%d", i)
		t.Setenv(key, v)
		if getbool(key, true) {
			t.Errorf("getbool(%q) = true, want false", v)
		}
	}

	// Unset and empty both keep the default.
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Error("getbool default on empty failed")
	}
}

func Test_splitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Errorf("splitCSV(\"\") = %#v, want nil", out)
	}
	want := []string{"a", "b", "c"}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, want) {
		t.Errorf("splitCSV = %#v, want %#v", got, want)
	}
}

func Test_normalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":      "/",
		" / ":   "/",
		"v1":    "/v1",
		"/v1/":  "/v1",
		"/v1":   "/v1",
		"a/b/":  "/a/b",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
