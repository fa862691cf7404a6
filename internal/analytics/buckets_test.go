package analytics

import (
	"testing"
	"time"

	"github.com/angelmondragon/storefront-gateway/pkg/enums"
)

func TestBucketNamesMonthly(t *testing.T) {
	names := BucketNames(enums.RevenuePeriodMonthly, time.Now())
	if len(names) != 12 || names[0] != "T1" || names[11] != "T12" {
		t.Fatalf("unexpected monthly buckets %v", names)
	}
}

func TestBucketNamesWeeklyStartOnMonday(t *testing.T) {
	// Sunday 2024-07-07 belongs to the week of Monday 2024-07-01.
	now := time.Date(2024, 7, 7, 18, 0, 0, 0, time.UTC)
	names := BucketNames(enums.RevenuePeriodWeekly, now)
	if len(names) != 12 {
		t.Fatalf("expected 12 weeks, got %d", len(names))
	}
	if names[11] != "T1/7-7/7" {
		t.Fatalf("expected current week T1/7-7/7, got %s", names[11])
	}
	if names[10] != "T24/6-30/6" {
		t.Fatalf("expected previous week T24/6-30/6, got %s", names[10])
	}
	if names[0] != "T15/4-21/4" {
		t.Fatalf("expected first week T15/4-21/4, got %s", names[0])
	}
}

func TestBucketNamesYearly(t *testing.T) {
	names := BucketNames(enums.RevenuePeriodYearly, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	want := []string{"Năm 2021", "Năm 2022", "Năm 2023", "Năm 2024", "Năm 2025"}
	if len(names) != len(want) {
		t.Fatalf("expected %d years, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("bucket %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}
