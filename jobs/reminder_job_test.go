package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderWindowDates(t *testing.T) {
	sameDay := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	assert.Equal(t,
		[]string{"2026-09-01"},
		reminderWindowDates(sameDay, sameDay.Add(5*time.Minute)))

	// A run at 23:05 looks at 00:05-00:10 the next day.
	beforeMidnight := time.Date(2026, 9, 1, 23, 5, 0, 0, time.UTC).Add(60 * time.Minute)
	assert.Equal(t,
		[]string{"2026-09-02"},
		reminderWindowDates(beforeMidnight, beforeMidnight.Add(5*time.Minute)))

	// The window itself straddling midnight covers both dates.
	straddle := time.Date(2026, 9, 1, 23, 58, 0, 0, time.UTC)
	assert.Equal(t,
		[]string{"2026-09-01", "2026-09-02"},
		reminderWindowDates(straddle, straddle.Add(5*time.Minute)))
}
