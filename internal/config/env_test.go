package config

import (
	"testing"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_FALSE", "false")
	t.Setenv("TEST_FLOAT", "3.14")

	if got := EnvOrDefault("TEST_STR", "fallback"); got != "value" {
		t.Fatalf("EnvOrDefault: got %q, want value", got)
	}
	if got := EnvOrDefault("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("EnvOrDefault missing: got %q, want fallback", got)
	}

	if got := EnvIntOrDefault("TEST_INT", 0); got != 42 {
		t.Fatalf("EnvIntOrDefault: got %d, want 42", got)
	}
	t.Setenv("BAD_INT", "oops")
	// fallback when not parseable or not set
	if got := EnvIntOrDefault("BAD_INT", 7); got != 7 {
		t.Fatalf("EnvIntOrDefault bad: got %d, want 7", got)
	}

	if got := EnvBoolOrDefault("TEST_BOOL_TRUE", false); got != true {
		t.Fatalf("EnvBoolOrDefault true: got %v, want true", got)
	}
	if got := EnvBoolOrDefault("TEST_BOOL_FALSE", true); got != false {
		t.Fatalf("EnvBoolOrDefault false: got %v, want false", got)
	}
	t.Setenv("BAD_BOOL", "oops")
	if EnvBoolOrDefault("BAD_BOOL", true) != true {
		t.Fatalf("EnvBoolOrDefault bad: expected fallback true")
	}

	if got := EnvFloat64OrDefault("TEST_FLOAT", 0.0); got != 3.14 {
		t.Fatalf("EnvFloat64OrDefault: got %v, want 3.14", got)
	}
	t.Setenv("BAD_FLOAT", "oops")
	if EnvFloat64OrDefault("BAD_FLOAT", 1.23) != 1.23 {
		t.Fatalf("EnvFloat64OrDefault bad: expected fallback 1.23")
	}

	t.Setenv("TEST_INT64", "1048576")
	if got := EnvInt64OrDefault("TEST_INT64", 0); got != 1048576 {
		t.Fatalf("EnvInt64OrDefault: got %d, want 1048576", got)
	}
	if got := EnvInt64OrDefault("MISSING_INT64", 42); got != 42 {
		t.Fatalf("EnvInt64OrDefault missing: got %d, want 42", got)
	}
}
