package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("SF_TEST_A", "")
	t.Setenv("SF_TEST_B", "b")
	t.Setenv("SF_TEST_C", "c")

	if got := First("fallback", "SF_TEST_A", "SF_TEST_B", "SF_TEST_C"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := First("fallback", "SF_TEST_MISSING"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
