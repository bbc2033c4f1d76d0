// Package diag carries the recoverable-warning contract used
// throughout the parser: nothing in this module ever returns a fatal
// error for malformed input, but a caller who wants to know what got
// degraded can supply a *Log and read it back afterward.
package diag

import "fmt"

// Kind names one of the recoverable degrade paths.
type Kind int

const (
	// MalformedHeader: a header field failed to match its expected
	// grammar and was stored as a generic unstructured field instead.
	MalformedHeader Kind = iota
	// UnknownCharset: a declared charset has no registered codec; the
	// configured default charset was substituted.
	UnknownCharset
	// TruncatedEncoding: a base64/quoted-printable/uuencode/yEnc
	// payload ended before a clean decode boundary; the partial decode
	// was kept.
	TruncatedEncoding
	// BoundaryMissing: a multipart body had no boundary parameter, or
	// the boundary yielded zero parts; the node was reclassified as
	// text/plain.
	BoundaryMissing
	// UnbalancedComment: a comment's closing ')' was never found; the
	// cursor was left parked at the outermost '('.
	UnbalancedComment
	// MultipleWhereSingleExpected: a header that should appear once
	// (or hold a single value) appeared more than once; the first
	// occurrence was kept.
	MultipleWhereSingleExpected
)

func (k Kind) String() string {
	switch k {
	case MalformedHeader:
		return "MalformedHeader"
	case UnknownCharset:
		return "UnknownCharset"
	case TruncatedEncoding:
		return "TruncatedEncoding"
	case BoundaryMissing:
		return "BoundaryMissing"
	case UnbalancedComment:
		return "UnbalancedComment"
	case MultipleWhereSingleExpected:
		return "MultipleWhereSingleExpected"
	default:
		return "Unknown"
	}
}

// A Warning is one recoverable degrade event.
type Warning struct {
	Kind    Kind
	Message string
}

func (w Warning) String() string { return w.Kind.String() + ": " + w.Message }

// A Log is an ordered, append-only collection of warnings. The zero
// value is ready to use; a nil *Log is also safe to call Add on, so
// callers that don't care about diagnostics can thread a nil Log
// through every parse call with no special-casing.
type Log struct {
	Warnings []Warning
}

// Add appends a warning to l, doing nothing if l is nil.
func (l *Log) Add(kind Kind, format string, args ...any) {
	if l == nil {
		return
	}
	l.Warnings = append(l.Warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Len reports how many warnings have been recorded, treating a nil
// Log as empty.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Warnings)
}
