package utils

import "testing"

func TestEnv(t *testing.T) {
	t.Setenv("PANELHIVE_TEST_KEY", "value")
	if got := Env("PANELHIVE_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("expected set value, got %q", got)
	}
	if got := Env("PANELHIVE_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
