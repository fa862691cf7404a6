package enums

import (
	"fmt"
	"strings"
)

// RevenuePeriod buckets the seller revenue chart.
type RevenuePeriod string

const (
	RevenuePeriodWeekly  RevenuePeriod = "weekly"
	RevenuePeriodMonthly RevenuePeriod = "monthly"
	RevenuePeriodYearly  RevenuePeriod = "yearly"
)

var validRevenuePeriods = []RevenuePeriod{
	RevenuePeriodWeekly,
	RevenuePeriodMonthly,
	RevenuePeriodYearly,
}

// String implements fmt.Stringer.
func (r RevenuePeriod) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RevenuePeriod.
func (r RevenuePeriod) IsValid() bool {
	for _, candidate := range validRevenuePeriods {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRevenuePeriod converts raw input into a RevenuePeriod; blank means monthly.
func ParseRevenuePeriod(value string) (RevenuePeriod, error) {
	normalized := RevenuePeriod(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return RevenuePeriodMonthly, nil
	}
	for _, candidate := range validRevenuePeriods {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid revenue period %q", value)
}
