package model

import (
	"fmt"
	"time"
)

// Diagnostic is one browser console record captured during a page visit.
// Records are produced by the browser session per navigation, formatted
// into artifact lines, and discarded; nothing retains them across URLs.
type Diagnostic struct {
	// Severity is the level the browser reported for this record,
	// already mapped onto our Severity scale.
	Severity Severity

	// Message is the free text of the record. It may contain embedded
	// structure (source URL, line number) placed there by the browser,
	// and may span multiple lines.
	Message string

	// Timestamp is the browser-reported event time in milliseconds
	// since the Unix epoch. Zero means the browser did not report one;
	// callers should substitute the capture time.
	Timestamp int64

	// Source identifies what produced the record: "console" for
	// console.* calls, "exception" for uncaught exceptions, or the
	// browser's own source tag for log entries (e.g. "network").
	Source string
}

// Time converts the epoch-millisecond timestamp into a time.Time in the
// local timezone, which is what artifact lines display.
func (d Diagnostic) Time() time.Time {
	return time.UnixMilli(d.Timestamp).Local()
}

// Format renders the diagnostic as a single artifact line:
//
//	[2006-01-02 15:04:05] SEVERE - message text
//
// The timestamp is local time. The message is included as-is; the
// writer is responsible for any spacing between records.
func (d Diagnostic) Format() string {
	return fmt.Sprintf("[%s] %s - %s", d.Time().Format("2006-01-02 15:04:05"), d.Severity, d.Message)
}
