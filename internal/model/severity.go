package model

import (
	"fmt"
	"strings"
)

// Severity represents the level of a browser console diagnostic.
// It doubles as a capture threshold: a session configured with threshold T
// records every diagnostic whose severity is >= T.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityAll captures every console record the browser reports,
	// including plain console.log output. Useful for debugging a site,
	// but extremely noisy on script-heavy pages.
	SeverityAll Severity = iota

	// SeverityInfo covers informational records: console.info, console.log,
	// and console.debug output. No indication of a problem by itself.
	SeverityInfo

	// SeverityWarning covers console.warn output and browser-generated
	// warnings such as deprecation notices and mixed-content reports.
	SeverityWarning

	// SeveritySevere covers console.error output, uncaught exceptions,
	// and failed resource loads. This is the default capture threshold
	// because these records almost always indicate a broken page.
	SeveritySevere
)

// String returns the canonical upper-case name of the severity level.
// This is the form used in artifact lines and in configuration files.
func (s Severity) String() string {
	switch s {
	case SeverityAll:
		return "ALL"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeveritySevere:
		return "SEVERE"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a configuration string into a Severity.
// Matching is case-insensitive. Returns an error for unrecognized names
// so that a typo in a config file fails at startup rather than silently
// capturing the wrong levels.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALL":
		return SeverityAll, nil
	case "INFO":
		return SeverityInfo, nil
	case "WARNING":
		return SeverityWarning, nil
	case "SEVERE":
		return SeveritySevere, nil
	default:
		return SeveritySevere, fmt.Errorf("unknown severity %q (want ALL, INFO, WARNING, or SEVERE)", s)
	}
}
