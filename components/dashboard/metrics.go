package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/ettle/strcase"
)

// DefaultHourlyRate is the monetary value of one saved hour used for ROI.
const DefaultHourlyRate = 25.0

// CalculateROI converts saved hours into a monetary estimate. The optional rate
// overrides DefaultHourlyRate.
func CalculateROI(timeSavedHours float64, hourlyRate ...float64) float64 {
	rate := DefaultHourlyRate
	if len(hourlyRate) > 0 {
		rate = hourlyRate[0]
	}
	return timeSavedHours * rate
}

// FormatDuration renders milliseconds as "1h 2m", "3m 4s" or "5s". Units are
// truncated, never rounded.
func FormatDuration(ms float64) string {
	if ms < 0 || math.IsNaN(ms) {
		ms = 0
	}
	seconds := int64(math.Floor(ms / 1000))
	minutes := seconds / 60
	hours := minutes / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// StatusColor maps workflow and execution statuses to text color classes.
func StatusColor(status string) string {
	switch status {
	case string(WorkflowActive), string(ExecutionSuccess):
		return "text-green-600"
	case string(WorkflowError):
		return "text-red-600"
	case string(WorkflowInactive):
		return "text-gray-500"
	case string(ExecutionRunning):
		return "text-blue-600"
	default:
		return "text-gray-600"
	}
}

// SuccessRate returns a percentage rounded to one decimal place.
func SuccessRate(successes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(successes) / float64(total) * 100)
}

// CategorySlug normalizes a category label for CSS classes and URLs.
func CategorySlug(category string) string {
	return strcase.ToKebab(strings.TrimSpace(category))
}

// CategoryIcon returns the icon name shown next to a workflow category.
func CategoryIcon(category string) string {
	switch strings.ToLower(category) {
	case "e-commerce":
		return "shopping-cart"
	case "sales":
		return "trending-up"
	case "marketing":
		return "globe"
	case "support":
		return "headphones"
	case "finance":
		return "dollar-sign"
	default:
		return "activity"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
