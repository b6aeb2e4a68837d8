package goVerify

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigPassesValidation(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "code digits too short",
			mutate:  func(c *Config) { c.Issue.CodeDigits = 4 },
			wantMsg: "CodeDigits",
		},
		{
			name:    "code digits too long",
			mutate:  func(c *Config) { c.Issue.CodeDigits = 11 },
			wantMsg: "CodeDigits",
		},
		{
			name:    "zero code ttl",
			mutate:  func(c *Config) { c.Issue.CodeTTL = 0 },
			wantMsg: "CodeTTL",
		},
		{
			name:    "zero send window",
			mutate:  func(c *Config) { c.Issue.SendWindow = 0 },
			wantMsg: "SendWindow",
		},
		{
			name: "send window exceeds ttl",
			mutate: func(c *Config) {
				c.Issue.CodeTTL = time.Minute
				c.Issue.SendWindow = 2 * time.Minute
			},
			wantMsg: "SendWindow",
		},
		{
			name:    "zero sends per window",
			mutate:  func(c *Config) { c.Issue.MaxSendsPerWindow = 0 },
			wantMsg: "MaxSendsPerWindow",
		},
		{
			name:    "empty redis prefix",
			mutate:  func(c *Config) { c.Issue.RedisPrefix = "" },
			wantMsg: "RedisPrefix",
		},
		{
			name:    "zero failed attempts",
			mutate:  func(c *Config) { c.Validation.MaxFailedAttempts = 0 },
			wantMsg: "MaxFailedAttempts",
		},
		{
			name: "throttle enabled without window",
			mutate: func(c *Config) {
				c.Throttle.EnableIPThrottle = true
				c.Throttle.Window = 0
			},
			wantMsg: "Throttle.Window",
		},
		{
			name: "throttle enabled without ops",
			mutate: func(c *Config) {
				c.Throttle.EnableIPThrottle = true
				c.Throttle.MaxOps = 0
			},
			wantMsg: "Throttle.MaxOps",
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantMsg: "Audit.BufferSize",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestThrottleDisabledSkipsThrottleValidation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Throttle.EnableIPThrottle = false
	cfg.Throttle.Window = 0
	cfg.Throttle.MaxOps = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled throttle must not require window settings: %v", err)
	}
}

func TestCloneConfigCopiesLocaleSlice(t *testing.T) {
	cfg := defaultConfig()
	clone := cloneConfig(cfg)

	if len(clone.Session.SupportedLocales) != len(cfg.Session.SupportedLocales) {
		t.Fatal("clone must carry the same locales")
	}

	clone.Session.SupportedLocales[0] = "xx"
	if cfg.Session.SupportedLocales[0] == "xx" {
		t.Fatal("mutating the clone must not affect the original")
	}
}
