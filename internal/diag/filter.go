// Package diag holds the diagnostic filter and the logger every other
// package reports through.
package diag

import "strings"

// FilterMode selects which message classes a Logger lets through.
type FilterMode uint8

const (
	FilterNone        FilterMode = 0
	FilterDiagnostics FilterMode = 1 << 0
	FilterLogs        FilterMode = 1 << 1
)

// FilterModeFrom combines the two enable switches additively.
func FilterModeFrom(enableDiagnostics, enableLogging bool) FilterMode {
	m := FilterNone
	if enableDiagnostics {
		m |= FilterDiagnostics
	}
	if enableLogging {
		m |= FilterLogs
	}
	return m
}

// Has reports whether every class in o is enabled in m.
func (m FilterMode) Has(o FilterMode) bool {
	return o != FilterNone && m&o == o
}

func (m FilterMode) String() string {
	var parts []string
	if m.Has(FilterDiagnostics) {
		parts = append(parts, "diagnostics")
	}
	if m.Has(FilterLogs) {
		parts = append(parts, "logs")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
