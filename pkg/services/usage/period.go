package usage

import (
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// TimestampLayout is the wire format for period bounds: millisecond precision
// with a literal Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// CurrentPeriod returns the month-to-date period for the calendar date of now:
// the first of the month through tomorrow, end exclusive. Both bounds are
// midnight UTC on the local calendar date, which is what daily-granularity
// billing APIs expect.
func CurrentPeriod(now time.Time) domain.BillingPeriod {
	y, m, d := now.Date()
	return domain.BillingPeriod{
		Start: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC),
	}
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
