package xip

import "time"

// isoNow returns the current local time as an ISO-8601 timestamp, matching
// the EffectiveDate stamp format expected by the preservation service.
func isoNow() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}
