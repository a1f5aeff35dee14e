package ask

import (
	"fmt"
	"time"
)

// ResponseTimeLayout renders the answer timestamp on a 12-hour clock.
const ResponseTimeLayout = "1/2/2006, 3:04:05 PM"

const divider = "━━━━━━━━━━━━━━━━"

// FormatAnswer renders an answer reply.
func FormatAnswer(question, answer, askedBy string, at time.Time, elapsed time.Duration) string {
	return fmt.Sprintf(
		"📝 Question: %s\n%s\n\n✅ Answer: %s\n\n%s\n🗣 Asked by: %s\n⏰ Response Time: %s\n⏲ Processing Time: %s seconds",
		question,
		divider,
		answer,
		divider,
		askedBy,
		at.Format(ResponseTimeLayout),
		FormatSeconds(elapsed),
	)
}

// minProcessingTime is the smallest duration shown, so a reply never claims 0.00 seconds.
const minProcessingTime = 10 * time.Millisecond

// FormatSeconds renders d as seconds with two decimals.
func FormatSeconds(d time.Duration) string {
	if d < minProcessingTime {
		d = minProcessingTime
	}
	return fmt.Sprintf("%.2f", d.Seconds())
}

// FormatError renders a failure reply; action completes "while ...".
func FormatError(action string, err error) string {
	status := ""
	if code, ok := statusCode(err); ok {
		status = fmt.Sprintf(", Status Code: %d", code)
	}
	return fmt.Sprintf("⚠️ An error occurred while %s. Error: %s%s. Please try again later.", action, err, status)
}
