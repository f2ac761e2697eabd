package errclass

import (
	"github.com/drewfead/copilot/internal/logging"
)

// ErrorFunc receives classified errors that survived deduplication and
// visibility filtering.
type ErrorFunc func(*StructuredError)

// WarningFunc receives non-fatal warnings (version mismatch and similar).
type WarningFunc func(string)

// Reporter is the single funnel between raw failures and the caller's
// error/warning callbacks. It classifies, filters aborts, applies the
// deduplication window, and logs everything it sees.
type Reporter struct {
	dedup      *Deduper
	onError    ErrorFunc
	onWarning  WarningFunc
	devConsole bool
}

// NewReporter creates a Reporter bound to the given callbacks. Either
// callback may be nil. devConsole enables surfacing of dev-only errors.
func NewReporter(onError ErrorFunc, onWarning WarningFunc, devConsole bool) *Reporter {
	return &Reporter{
		dedup:      NewDeduper(),
		onError:    onError,
		onWarning:  onWarning,
		devConsole: devConsole,
	}
}

// Report classifies err and routes it. Abort-induced errors are discarded.
// Warnings go to the warning callback without deduplication. Everything
// else is deduplicated and, visibility permitting, handed to the error
// callback. Logging happens unconditionally; the logging package forwards
// error-level records to the observability sink when one is configured.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	if IsAbort(err) {
		logging.Debug("discarding abort-induced error", "error", err)
		return
	}

	se := Classify(err)

	if se.IsWarning() {
		logging.Warn(se.Message)
		if r.onWarning != nil {
			r.onWarning(se.Message)
		}
		return
	}

	if !r.dedup.ShouldReport(se.Message) {
		logging.Debug("suppressing duplicate error", "code", se.Code, "message", se.Message)
		return
	}

	logging.Error("client error", "code", se.Code, "message", se.Message, "url", se.URL)

	switch se.Visibility {
	case VisibilitySilent:
		return
	case VisibilityDevOnly:
		if !r.devConsole {
			return
		}
	}

	if r.onError != nil {
		r.onError(se)
	}
}

// Warn forwards a warning message without classification.
func (r *Reporter) Warn(msg string) {
	logging.Warn(msg)
	if r.onWarning != nil {
		r.onWarning(msg)
	}
}
