package analytics

import (
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-gateway/pkg/enums"
)

const (
	weeklyBuckets = 12
	yearlyBuckets = 5
)

// BucketNames returns the chart bucket labels for a period, oldest first.
// Weeks start on Monday and the last bucket is the week containing now.
func BucketNames(period enums.RevenuePeriod, now time.Time) []string {
	switch period {
	case enums.RevenuePeriodWeekly:
		monday := weekStart(now)
		names := make([]string, 0, weeklyBuckets)
		for i := weeklyBuckets - 1; i >= 0; i-- {
			start := monday.AddDate(0, 0, -7*i)
			end := start.AddDate(0, 0, 6)
			names = append(names, fmt.Sprintf("T%d/%d-%d/%d", start.Day(), int(start.Month()), end.Day(), int(end.Month())))
		}
		return names
	case enums.RevenuePeriodYearly:
		names := make([]string, 0, yearlyBuckets)
		for i := yearlyBuckets - 1; i >= 0; i-- {
			names = append(names, fmt.Sprintf("Năm %d", now.Year()-i))
		}
		return names
	default:
		names := make([]string, 0, 12)
		for m := 1; m <= 12; m++ {
			names = append(names, fmt.Sprintf("T%d", m))
		}
		return names
	}
}

func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
