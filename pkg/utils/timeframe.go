package utils

import (
	"fmt"
	"time"
)

// GetTimeFrame returns the three-hour window t falls in, e.g. "09-12"
func GetTimeFrame(t time.Time) string {
	hour := t.Hour()
	timeFrame := hour - (hour % 3)
	return fmt.Sprintf("%02d-%02d", timeFrame, timeFrame+3)
}

// GenerateReportKey names the Redis hash holding the latest report of the
// hour t falls in: REPORT:<prefix>:HOUR:2024-03-22-15
func GenerateReportKey(prefix string, t time.Time) string {
	return fmt.Sprintf("REPORT:%s:HOUR:%s", prefix, t.UTC().Format("2006-01-02-15"))
}

// GenerateWindowKey names the Redis hash holding the latest report of the
// three-hour window t falls in: REPORT:<prefix>:WINDOW:2024-03-22-15-18
func GenerateWindowKey(prefix string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("REPORT:%s:WINDOW:%s-%s", prefix, t.Format("2006-01-02"), GetTimeFrame(t))
}
