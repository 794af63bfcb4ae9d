package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityAll, "ALL"},
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeveritySevere, "SEVERE"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests parsing of severity names from configuration.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	t.Run("accepts canonical and mixed-case names", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			input    string
			expected Severity
		}{
			{"ALL", SeverityAll},
			{"all", SeverityAll},
			{"Info", SeverityInfo},
			{"WARNING", SeverityWarning},
			{"severe", SeveritySevere},
			{"  SEVERE  ", SeveritySevere},
		}

		for _, tc := range testCases {
			got, err := ParseSeverity(tc.input)
			if err != nil {
				t.Errorf("ParseSeverity(%q) returned error: %v", tc.input, err)
				continue
			}
			if got != tc.expected {
				t.Errorf("ParseSeverity(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseSeverity("FATAL"); err == nil {
			t.Error("expected error for unknown severity name")
		}
	})
}

// TestSeverityOrdering verifies that the threshold comparison holds:
// a session configured for SEVERE must not capture WARNING records.
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityAll < SeverityInfo && SeverityInfo < SeverityWarning && SeverityWarning < SeveritySevere) {
		t.Error("severity levels are not strictly ordered")
	}

	if SeverityWarning >= SeveritySevere {
		t.Error("WARNING must sort below the SEVERE capture threshold")
	}
}
