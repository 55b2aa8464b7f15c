package diag

import (
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

var (
	infoStyle  = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnStyle  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorStyle = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
)

// Logger prints through prefixed pterm printers. Info lines are logs,
// warnings are diagnostics; errors are always printed. Safe for
// concurrent use.
type Logger struct {
	mode FilterMode

	mu   sync.Mutex
	info *pterm.PrefixPrinter
	warn *pterm.PrefixPrinter
	fail *pterm.PrefixPrinter
}

func newPrinter(text string, style *pterm.Style, w io.Writer) *pterm.PrefixPrinter {
	p := &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: style,
			Text:  text,
		},
	}
	return p.WithWriter(w)
}

// New returns a Logger writing to stderr.
func New(mode FilterMode) *Logger {
	return NewWithWriter(mode, os.Stderr)
}

// NewWithWriter returns a Logger writing to w.
func NewWithWriter(mode FilterMode, w io.Writer) *Logger {
	return &Logger{
		mode: mode,
		info: newPrinter("INFO", infoStyle, w),
		warn: newPrinter("WARN", warnStyle, w),
		fail: newPrinter("ERROR", errorStyle, w),
	}
}

// Nop returns a Logger that prints nothing, errors included.
func Nop() *Logger {
	return NewWithWriter(FilterNone, io.Discard)
}

// WithWriter returns a copy of l that prints to w.
func (l *Logger) WithWriter(w io.Writer) *Logger {
	return NewWithWriter(l.Mode(), w)
}

// Mode returns the active filter. A nil Logger filters everything.
func (l *Logger) Mode() FilterMode {
	if l == nil {
		return FilterNone
	}
	return l.mode
}

// Infof prints a progress line when logs are enabled.
func (l *Logger) Infof(format string, args ...any) {
	if !l.Mode().Has(FilterLogs) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.info.Printfln(format, args...)
}

// Diagnosticf prints a warning about the input when diagnostics are
// enabled.
func (l *Logger) Diagnosticf(format string, args ...any) {
	if !l.Mode().Has(FilterDiagnostics) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn.Printfln(format, args...)
}

// Errorf prints regardless of the filter.
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail.Printfln(format, args...)
}
