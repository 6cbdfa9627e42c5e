package utils

import "time"

const (
	DateLayoutBR     = "02/01/2006"
	DateTimeLayoutBR = "02/01/2006 15:04"
)

func FormatDateTimeBR(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateTimeLayoutBR)
}

func FormatOptionalDateBR(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(DateLayoutBR)
}

// StartOfMonth и StartOfNextMonth задают полуинтервал месяца [from, to).
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func StartOfNextMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}
