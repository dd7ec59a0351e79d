package dashboard

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLocale is used when a request carries no usable locale.
const DefaultLocale = "en"

type dateFormat struct {
	months [12]string
	// layout receives day, month name, year and the HH:MM clock.
	layout string
}

var dateFormats = map[string]dateFormat{
	"en": {
		months: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		layout: "%[2]s %[1]d, %[3]d, %[4]s",
	},
	"es": {
		months: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
		layout: "%[1]d %[2]s %[3]d, %[4]s",
	},
}

// NormalizeLocale lowercases a locale tag and uses "-" as the region separator.
func NormalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(locale)), "_", "-")
}

// ResolveLocalized selects the value for locale, falling back from a
// language-region pair (`es-mx`) to its base language (`es`), then to fallback.
func ResolveLocalized[T any](values map[string]T, locale string, fallback T) T {
	for _, candidate := range localeCandidates(locale) {
		if value, ok := values[candidate]; ok {
			return value
		}
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = NormalizeLocale(locale)
	if locale == "" {
		return nil
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return candidates
}

// FormatDate renders a short date with hour and minute for the given locale.
func FormatDate(t time.Time, locale string) string {
	if t.IsZero() {
		return "-"
	}
	format := ResolveLocalized(dateFormats, locale, dateFormats[DefaultLocale])
	return fmt.Sprintf(format.layout, t.Day(), format.months[t.Month()-1], t.Year(), t.Format("15:04"))
}
