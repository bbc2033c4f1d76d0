package charset

import (
	"regexp"
	"strings"

	"kmimego/scanner"
	"kmimego/token"
)

var encodedWordRE = regexp.MustCompile(`=\?[^?\s]+\?[BbQq]\?[^?]*\?=`)

// DecodeSentence decodes every RFC 2047 encoded-word found anywhere in
// s (a full unstructured header value, not a single word), leaving
// literal text untouched. Linear whitespace between two adjacent
// encoded-words is dropped per RFC 2047 section 6.2, whether or not
// the two words share a charset, since such whitespace exists only to
// keep the wire form foldable.
func DecodeSentence(s string, reg Registry, fallbackCharset string) string {
	matches := encodedWordRE.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	prevEnd := 0
	prevWasEncoded := false
	for _, m := range matches {
		start, end := m[0], m[1]
		between := s[prevEnd:start]
		isOnlySpace := strings.TrimFunc(between, func(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\n' }) == ""

		c := scanner.New([]byte(s[start:end]))
		parts, ok := token.EncodedWord(c)
		if !ok {
			sb.WriteString(s[prevEnd:end])
			prevEnd = end
			prevWasEncoded = false
			continue
		}
		if !(prevWasEncoded && isOnlySpace) {
			sb.WriteString(between)
		}
		dec, ok2 := DecodeWord(parts, reg, fallbackCharset)
		if ok2 {
			sb.WriteString(dec)
		} else {
			sb.WriteString(s[start:end])
		}
		prevEnd = end
		prevWasEncoded = true
	}
	sb.WriteString(s[prevEnd:])
	return sb.String()
}

// EncodeSentence segments s around whitespace and control characters,
// RFC 2047-encoding only the segments that contain non-ASCII or
// otherwise unsafe bytes, and leaves the rest (including the
// whitespace separators) untouched.
func EncodeSentence(s, charsetName string, encode func(string) ([]byte, error)) string {
	var sb strings.Builder
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		seg := s[start:end]
		if needsEncoding(seg) {
			sb.WriteString(EncodeWord(seg, charsetName, encode, false))
		} else {
			sb.WriteString(seg)
		}
		start = end
	}

	for i, r := range s {
		if r == ' ' || r == '\t' || r < 0x20 {
			flush(i)
			sb.WriteRune(r)
			start = i + len(string(r))
		}
	}
	flush(len(s))
	return sb.String()
}

func needsEncoding(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return true
		}
	}
	return false
}
