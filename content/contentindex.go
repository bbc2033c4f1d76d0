package content

import (
	"strconv"
	"strings"
)

// Index uniquely identifies a node in a Content tree, compatible with
// RFC 3501 §6.4.5 IMAP section specifiers ("1.2.3", 1-based).
type Index struct {
	parts []int
}

// ParseIndex parses an IMAP-style dotted section string.
func ParseIndex(s string) (Index, bool) {
	if s == "" {
		return Index{}, true
	}
	fields := strings.Split(s, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return Index{}, false
		}
		parts[i] = n
	}
	return Index{parts: parts}, true
}

// IsValid reports whether the index is non-empty.
func (idx Index) IsValid() bool { return len(idx.parts) > 0 }

// String renders the index back to its RFC 3501 dotted form.
func (idx Index) String() string {
	if len(idx.parts) == 0 {
		return ""
	}
	fields := make([]string, len(idx.parts))
	for i, p := range idx.parts {
		fields[i] = strconv.Itoa(p)
	}
	return strings.Join(fields, ".")
}

// Push adds index as the new top-most (leading) component, used when
// ascending the message part hierarchy while building an index bottom-up.
func (idx Index) Push(index int) Index {
	parts := make([]int, 0, len(idx.parts)+1)
	parts = append(parts, index)
	parts = append(parts, idx.parts...)
	return Index{parts: parts}
}

// Pop removes and returns the top-most component, descending one level
// into the hierarchy; ok is false on an empty index.
func (idx Index) Pop() (rest Index, first int, ok bool) {
	if len(idx.parts) == 0 {
		return idx, 0, false
	}
	rest.parts = append([]int(nil), idx.parts[1:]...)
	return rest, idx.parts[0], true
}

// Up removes and returns the bottom-most component, navigating to the
// index of the parent part.
func (idx Index) Up() (rest Index, last int, ok bool) {
	if len(idx.parts) == 0 {
		return idx, 0, false
	}
	n := len(idx.parts)
	rest.parts = append([]int(nil), idx.parts[:n-1]...)
	return rest, idx.parts[n-1], true
}

func (idx Index) Equal(other Index) bool {
	if len(idx.parts) != len(other.parts) {
		return false
	}
	for i := range idx.parts {
		if idx.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}
