package header

import (
	"kmimego/charset"
	"kmimego/scanner"
)

// Codecs bundles the collaborators every structured Field needs to
// parse or emit its 7-bit wire form: the charset registry, the
// default charset to fall back to when a declared one is unknown, and
// whether the surrounding message uses CRLF or bare-LF line endings.
type Codecs struct {
	Registry        charset.Registry
	DefaultCharset  string
	IsCRLF          bool
}

// Field is the capability set every header variant implements: parse
// from the raw 7-bit wire form, emit back to 7-bit (with or without
// the "Key: " prefix), a unicode view for programmatic access, clear,
// is-empty, and a type name for diagnostics.
type Field interface {
	// TypeName identifies the variant, e.g. "AddressList".
	TypeName() string
	// IsEmpty reports whether the field carries no value.
	IsEmpty() bool
	// Clear resets the field to its zero value.
	Clear()
	// ParseFrom7Bit parses raw (already unfolded) wire bytes into the
	// field's native representation, reporting success.
	ParseFrom7Bit(raw []byte, c Codecs) bool
	// EmitAs7Bit renders the field back to wire bytes, not including
	// any trailing CRLF.
	EmitAs7Bit(c Codecs) []byte
	// AsUnicode returns a human-readable unicode rendering of the
	// field's value.
	AsUnicode() string
	// SetFromUnicode replaces the field's value from unicode text,
	// parsed the same way a human would type it.
	SetFromUnicode(s string, c Codecs) bool
}

func unfold(raw []byte) []byte { return scanner.UnfoldHeader(raw) }
