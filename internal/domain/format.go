package domain

import (
	"fmt"
	"time"
)

// FormatClock renders a duration as zero-padded MM:SS. Sessions are
// shorter than an hour, so there is no hours component; negative values
// render as 00:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
