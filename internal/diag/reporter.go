package diag

import "fmt"

// Reporter is the shared diagnostic sink threaded through every pass
// (§7: "every pass appends to a shared Reporter"). Passes append
// diagnostics as they go; the driver decides whether to stop the
// compilation after a pass based on HasErrors.
type Reporter struct {
	diagnostics []Diagnostic
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Error records an error-severity diagnostic.
func (r *Reporter) Error(stage Stage, code Code, span Span, message string) {
	r.diagnostics = append(r.diagnostics, Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Span:     span,
	})
}

// Errorf records an error-severity diagnostic with formatted text.
func (r *Reporter) Errorf(stage Stage, code Code, span Span, format string, args ...interface{}) {
	r.Error(stage, code, span, fmt.Sprintf(format, args...))
}

// Warning records a warning-severity diagnostic.
func (r *Reporter) Warning(stage Stage, code Code, span Span, message string) {
	r.diagnostics = append(r.diagnostics, Diagnostic{
		Stage:    stage,
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Span:     span,
	})
}

// Emit appends a fully-constructed Diagnostic.
func (r *Reporter) Emit(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns every diagnostic recorded so far, in emission order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// HasErrors reports whether any error- or fatal-severity diagnostic was
// recorded. Checker passes continue within the current function boundary
// but stop the compilation at end-of-pass once this is true.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == SeverityError || d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error/fatal diagnostics recorded.
func (r *Reporter) ErrorCount() int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == SeverityError || d.Severity == SeverityFatal {
			n++
		}
	}
	return n
}

// Reset clears all recorded diagnostics, releasing the Reporter for reuse
// (tables are per-compilation; so is the Reporter - §3 Lifecycle).
func (r *Reporter) Reset() {
	r.diagnostics = nil
}
